package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// 文字列キー・文字列値のストア（ブラウザのlocalStorage相当）
// トランザクションは無い。
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// 無いキーの削除はエラーにしない
	Remove(ctx context.Context, key string) error
}

type namespaced struct {
	inner  Store
	prefix string
}

// prefix:key でアクセスするStoreを返す
func Namespaced(s Store, prefix string) Store {
	return &namespaced{inner: s, prefix: prefix}
}

func (n *namespaced) key(k string) string {
	return n.prefix + ":" + k
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *namespaced) Set(ctx context.Context, key string, value string) error {
	return n.inner.Set(ctx, n.key(key), value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.key(key))
}

// セッション単位の名前空間
func ForSession(s Store, sessionID string) Store {
	return Namespaced(s, "session:"+sessionID)
}
