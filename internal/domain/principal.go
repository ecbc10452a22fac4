package domain

// Principal: участник запроса. Создаётся middleware из токена и явно
// передаётся в сервисы и фильтры; нулевое значение означает анонима.
type Principal struct {
	UserID      int64
	Role        UserRole
	IsSuperuser bool
}

// Anonymous возвращает неаутентифицированного участника.
func Anonymous() Principal {
	return Principal{}
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && (p.Role == RoleAdmin || p.IsSuperuser)
}

// Is сообщает, является ли участник указанным пользователем.
func (p Principal) Is(userID *int64) bool {
	return p.Authenticated() && userID != nil && *userID == p.UserID
}
