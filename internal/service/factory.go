package service

import (
	"pken.app/survey-gateway/internal/cache"
	"pken.app/survey-gateway/internal/wordpress"
)

type ServicesConfig struct {
	WordPress    wordpress.Client
	HistoryCache cache.HistoryCache
}

// Services is built once per process; the survey service keeps in-flight
// fetch state that must be shared across requests.
type Services struct {
	users   UserService
	surveys SurveyService
}

func NewServices(cfg ServicesConfig) *Services {
	historyCache := cfg.HistoryCache
	if historyCache == nil {
		historyCache = cache.Noop{}
	}
	return &Services{
		users:   NewUserService(cfg.WordPress),
		surveys: NewSurveyService(cfg.WordPress, historyCache),
	}
}

func (s *Services) Users() UserService {
	return s.users
}

func (s *Services) Surveys() SurveyService {
	return s.surveys
}
