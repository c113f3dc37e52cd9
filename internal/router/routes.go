package router

// Access is who may open a route
type Access int

const (
	Open Access = iota
	// Authed routes need a live session
	Authed
	// Admin routes need a live admin session
	Admin
)

// Route names
const (
	Home            = "home"
	Login           = "login"
	Register        = "register"
	OAuth           = "oauth"
	AdminLogin      = "admin-login"
	Dashboard       = "dashboard"
	Questions       = "questions"
	CreateQuestion  = "create-question"
	Question        = "question"
	CreateMatch     = "create-match"
	JoinMatch       = "join-match"
	Lobby           = "lobby"
	Match           = "match"
	MatchFinish     = "match-finish"
	Profile         = "profile"
	Search          = "search"
	CompleteProfile = "complete-profile"
	AdminDashboard  = "admin-dashboard"
	AdminQuestions  = "admin-questions"
)

// Route is one named screen path
type Route struct {
	Name   string
	Path   string
	Access Access
}

// Routes is the full screen table. Literal paths come before the patterns
// that would shadow them.
var Routes = []Route{
	{Home, "/", Open},
	{Login, "/login", Open},
	{Register, "/register", Open},
	{OAuth, "/oauth", Open},
	{AdminLogin, "/admin-login", Open},

	{Dashboard, "/dashboard", Authed},
	{Questions, "/questions", Authed},
	{CreateQuestion, "/questions/create", Authed},
	{Question, "/questions/{id}", Authed},
	{CreateMatch, "/create-match", Authed},
	{JoinMatch, "/join-match", Authed},
	{Lobby, "/lobby/{roomCode}", Authed},
	{MatchFinish, "/match/{roomCode}/finish", Authed},
	{Match, "/match/{roomCode}", Authed},
	{Profile, "/profile/{id}", Authed},
	{Search, "/search", Authed},
	{CompleteProfile, "/complete-profile", Authed},

	{AdminDashboard, "/admin-dashboard", Admin},
	{AdminQuestions, "/admin-questions", Admin},
}

// redirect is where a guarded route sends a visitor without access
func (a Access) redirect() string {
	switch a {
	case Admin:
		return "/admin-login"
	case Authed:
		return "/login"
	}
	return ""
}
