package duolingo

// Friend is a user from the signed-in account's points ranking.
type Friend struct {
	Username string
	ID       int64
	Points   int
}

// Language is one language the signed-in account is learning.
type Language struct {
	Abbr   string
	Name   string
	Points int
}

// userDTO is the subset of /users/<name> the client reads.
type userDTO struct {
	Username     string                     `json:"username"`
	ID           int64                      `json:"id"`
	Languages    []languageDTO              `json:"languages"`
	LanguageData map[string]languageDataDTO `json:"language_data"`
}

type languageDTO struct {
	Language       string `json:"language"`
	LanguageString string `json:"language_string"`
	Learning       bool   `json:"learning"`
	Points         int    `json:"points"`
}

type languageDataDTO struct {
	PointsRankingData []rankingDTO `json:"points_ranking_data"`
}

type rankingDTO struct {
	Username   string `json:"username"`
	ID         int64  `json:"id"`
	PointsData struct {
		Total int `json:"total"`
	} `json:"points_data"`
}

// loginRequest is the body posted to /login.
type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// loginResponse carries the failure marker the login endpoint returns in
// place of an error status.
type loginResponse struct {
	Failure string `json:"failure"`
	Message string `json:"message"`
}
