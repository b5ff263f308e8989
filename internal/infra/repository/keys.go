package repository

// localStorageと同じキー名
const (
	CartKey     = "cart"
	LoggedInKey = "isLoggedIn"
	UsernameKey = "username"
	EmailKey    = "userEmail"
	UsersKey    = "registeredUsers"
	OrdersKey   = "orders"
)

// 登録ユーザーはセッションをまたぐ名前空間
const SharedNamespace = "quickcart"
