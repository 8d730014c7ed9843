package respond

type AddUserRespond struct {
	Message string `json:"message"`
	UserId  int64  `json:"user_id"`
}

type UserProfileRespond struct {
	UserId    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	Location  string `json:"location"`
	CreatedAt string `json:"created_at"`
}

type LoginRespond struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	User        UserProfileRespond `json:"user"`
}
