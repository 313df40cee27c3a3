package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	firebaseauth "firebase.google.com/go/v4/auth"

	httpapi "github.com/ecosphere-community/eco-backend/internal/api/http"
	"github.com/ecosphere-community/eco-backend/internal/api/http/middleware"
	"github.com/ecosphere-community/eco-backend/internal/auth"
	cleanuphttp "github.com/ecosphere-community/eco-backend/internal/cleanups/http"
	cleanuprepo "github.com/ecosphere-community/eco-backend/internal/cleanups/repository"
	cleanupsvc "github.com/ecosphere-community/eco-backend/internal/cleanups/service"
	fundhttp "github.com/ecosphere-community/eco-backend/internal/fundraisers/http"
	fundrepo "github.com/ecosphere-community/eco-backend/internal/fundraisers/repository"
	fundsvc "github.com/ecosphere-community/eco-backend/internal/fundraisers/service"
	mkthttp "github.com/ecosphere-community/eco-backend/internal/marketplace/http"
	mktrepo "github.com/ecosphere-community/eco-backend/internal/marketplace/repository"
	mktsvc "github.com/ecosphere-community/eco-backend/internal/marketplace/service"
	"github.com/ecosphere-community/eco-backend/internal/reports"
	"github.com/ecosphere-community/eco-backend/internal/rewards"
	"github.com/ecosphere-community/eco-backend/internal/scraper"
	"github.com/ecosphere-community/eco-backend/internal/users"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	RewardAmount   int64

	DB         *pgxpool.Pool
	Cache      *redis.Client
	Chain      users.BalanceReader
	AuthClient *firebaseauth.Client
	Scraper    *scraper.Handler
	Uploader   cleanuphttp.Uploader
	Log        zerolog.Logger
}

// BuildRouter wires every feature group onto one gin engine.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	if dep.AuthClient != nil {
		r.Use(auth.VerifyToken(dep.AuthClient, dep.Log))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Cache)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	rewardRepo := rewards.NewRepo(dep.DB)

	users.NewHandler(userRepo, dep.Chain, dep.Log).Register(r)

	fundSvc := fundsvc.New(fundrepo.NewRepo(dep.DB), userRepo, rewardRepo, dep.Cache, dep.RewardAmount, dep.Log)
	fundhttp.New(fundSvc).Register(r)

	cleanupSvc := cleanupsvc.New(cleanuprepo.NewRepo(dep.DB), userRepo, rewardRepo, dep.RewardAmount, dep.Log)
	cleanuphttp.New(cleanupSvc, dep.Uploader).Register(r)

	reports.NewHandler(reports.NewRepo(dep.DB), dep.Log).Register(r)

	mktSvc := mktsvc.New(mktrepo.NewRepo(dep.DB), dep.Log)
	mkthttp.New(mktSvc).Register(r.Group("/api/marketplace"))

	if dep.Scraper != nil {
		dep.Scraper.Register(r)
	}

	return r
}
