package usecase

import (
	"context"
	"log/slog"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactValidator interface {
	ValidateContact(in ContactInput) map[string]string
}

// 問い合わせは保存せずログに残すだけ
type ContactUsecase struct {
	validator ContactValidator
	log       *slog.Logger
}

// DI
func NewContactUsecase(validator ContactValidator, log *slog.Logger) *ContactUsecase {
	return &ContactUsecase{validator: validator, log: log}
}

func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) (string, error) {
	if fields := u.validator.ValidateContact(in); len(fields) > 0 {
		return "", NewFieldError("Please fill in all required fields correctly.", fields)
	}

	u.log.InfoContext(ctx, "contact message received",
		"name", in.Name,
		"email", in.Email,
		"length", len(in.Message),
	)
	return "Thank you for your message! We'll get back to you soon.", nil
}
