package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/config"
	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/infrastructure/broker"
	"github.com/oksasatya/course-admin/internal/infrastructure/realtime"
	"github.com/oksasatya/course-admin/internal/infrastructure/remote"
	"github.com/oksasatya/course-admin/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager

	apiClient *remote.Client
	sessions  *application.SessionService
	catalog   *application.Catalog
	builder   *application.CourseBuilder
	analytics *application.AnalyticsService
	search    *application.SearchService

	hub       *realtime.Hub
	rabbitPub *broker.Publisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetAPIClient(c *remote.Client)                { apiClient = c }
func GetAPIClient() *remote.Client                 { return apiClient }
func SetSessions(s *application.SessionService)    { sessions = s }
func GetSessions() *application.SessionService     { return sessions }
func SetCatalog(c *application.Catalog)            { catalog = c }
func GetCatalog() *application.Catalog             { return catalog }
func SetBuilder(b *application.CourseBuilder)      { builder = b }
func GetBuilder() *application.CourseBuilder       { return builder }
func SetAnalytics(a *application.AnalyticsService) { analytics = a }
func GetAnalytics() *application.AnalyticsService  { return analytics }
func SetSearch(s *application.SearchService)       { search = s }
func GetSearch() *application.SearchService        { return search }
func SetHub(h *realtime.Hub)                       { hub = h }
func GetHub() *realtime.Hub                        { return hub }
func SetRabbitPub(p *broker.Publisher)             { rabbitPub = p }
func GetRabbitPub() *broker.Publisher              { return rabbitPub }
func SetES(c *elasticsearch.Client)                { esClient = c }
func GetES() *elasticsearch.Client                 { return esClient }
