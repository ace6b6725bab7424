package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"spilled-server/internal/handlers"
	"spilled-server/internal/managers"
	"spilled-server/internal/middleware"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, adminEmails []string) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router)
	// Setup routes
	setupRoutes(router, databaseMgr, mailMgr, jwtMgr, adminEmails)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept, Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, adminEmails []string) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Spilled",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		// Ping the database
		conn, err := databaseMgr.GetPool().Acquire(c)
		if err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		defer conn.Release()
		c.Status(http.StatusOK)
	})

	// Set up API routes
	apiRouter := router.Group("/api")
	{
		// Set up user routes
		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(&databaseMgr, &jwtMgr, &mailMgr, adminEmails)
		userRoutes(userRouter, userHdl, jwtMgr)

		// Set up story routes
		storyRouter := apiRouter.Group("/stories")
		storyHdl := handlers.NewStoryHandler(&databaseMgr)
		commentHdl := handlers.NewCommentHandler(&databaseMgr)
		// It's important to define the feed route prior to the story routes, because
		// we don't want the JWT middleware in this unauthorized request
		apiRouter.GET("/feed", storyHdl.GetStoriesFeed)
		apiRouter.GET("/trending", storyHdl.GetTrendingStories)
		storyRoutes(storyRouter, storyHdl, commentHdl, jwtMgr)

		// Set up guy routes
		guyRouter := apiRouter.Group("/guys")
		guyRouter.Use(jwtMgr.JWTMiddleware())
		guyHdl := handlers.NewGuyHandler(&databaseMgr)
		guyRoutes(guyRouter, guyHdl)

		// Set up comment routes
		commentRouter := apiRouter.Group("/comments")
		commentRouter.Use(jwtMgr.JWTMiddleware())
		commentRoutes(commentRouter, commentHdl)

		// Set up message routes
		messageRouter := apiRouter.Group("/messages")
		messageRouter.Use(jwtMgr.JWTMiddleware())
		messageHdl := handlers.NewMessageHandler(&databaseMgr)
		messageRoutes(messageRouter, messageHdl)
	}
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, jwtMgr managers.JWTMgr) {
	userRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	userRouter.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	userRouter.POST("/refresh", middleware.ValidateAndSanitizeStruct(&schemas.RefreshTokenRequest{}), userHdl.RefreshToken)
	// The following routes require the user to be authenticated
	userRouter.Use(jwtMgr.JWTMiddleware())
	userRouter.GET("/stats", userHdl.GetUserStats)
	userRouter.POST("/verification", middleware.ValidateAndSanitizeStruct(&schemas.SubmitVerificationRequest{}), userHdl.SubmitVerification)
	userRouter.GET("/verification/pending", userHdl.ListPendingVerifications)
	userRouter.POST("/verification/bulk-review", middleware.ValidateAndSanitizeStruct(&schemas.BulkReviewVerificationRequest{}), userHdl.BulkReviewVerification)
	userRouter.GET("/:userId", userHdl.HandleGetUserRequest)
	userRouter.POST("/:userId/verification/review", middleware.ValidateAndSanitizeStruct(&schemas.ReviewVerificationRequest{}), userHdl.ReviewVerification)
}

func storyRoutes(storyRouter *gin.RouterGroup, storyHdl handlers.StoryHdl, commentHdl handlers.CommentHdl, jwtMgr managers.JWTMgr) {
	storyRouter.Use(jwtMgr.JWTMiddleware())
	storyRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateStoryRequest{}), storyHdl.CreateStory)
	storyRouter.GET("/stats", storyHdl.GetStoryStats)
	storyRouter.GET("/:storyId", storyHdl.GetStory)
	storyRouter.DELETE("/:storyId", storyHdl.DeleteStory)
	storyRouter.POST("/:storyId/comments", middleware.ValidateAndSanitizeStruct(&schemas.CreateCommentRequest{}), commentHdl.CreateComment)
	storyRouter.GET("/:storyId/comments", commentHdl.GetCommentsByStory)
}

func guyRoutes(guyRouter *gin.RouterGroup, guyHdl handlers.GuyHdl) {
	guyRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateGuyRequest{}), guyHdl.CreateGuy)
	guyRouter.GET("", guyHdl.SearchGuys)
	guyRouter.GET("/popular", guyHdl.GetPopularGuys)
	guyRouter.GET("/:guyId", guyHdl.GetGuy)
	guyRouter.DELETE("/:guyId", guyHdl.DeleteGuy)
}

func commentRoutes(commentRouter *gin.RouterGroup, commentHdl handlers.CommentHdl) {
	commentRouter.GET("/stats", commentHdl.GetCommentStats)
	commentRouter.DELETE("/:commentId", commentHdl.DeleteComment)
}

func messageRoutes(messageRouter *gin.RouterGroup, messageHdl handlers.MessageHdl) {
	messageRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.SendMessageRequest{}), messageHdl.SendMessage)
	messageRouter.GET("/conversations", messageHdl.GetConversations)
	messageRouter.GET("/stats", messageHdl.GetMessageStats)
	messageRouter.POST("/cleanup", messageHdl.CleanupExpiredMessages)
	messageRouter.GET("/:userId", messageHdl.GetChatHistory)
	messageRouter.DELETE("/:messageId", messageHdl.DeleteMessage)
}
