package ggg_client

const (
	// APIPrefix is prepended to every endpoint
	APIPrefix = "/api"

	GameEndpoint        = APIPrefix + "/games/%s"
	GamePlayersEndpoint = APIPrefix + "/games/%s/players"
	ActivitiesEndpoint  = APIPrefix + "/games/%s/activities"
	ScoreEndpoint       = APIPrefix + "/games/%s/score"
	StatusEndpoint      = APIPrefix + "/games/%s/status"
	CommentsEndpoint    = APIPrefix + "/games/%s/comments"
	PlayerStatsEndpoint = APIPrefix + "/games/%s/players/%s/stats"
	StatEndpoint        = APIPrefix + "/games/%s/stats/%s"

	// Headers
	AuthorizationHeader = "Authorization"
	AcceptHeader        = "Accept"
	JSONContentType     = "application/json"
)
