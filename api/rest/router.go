package rest

import "github.com/gin-gonic/gin"

// Handlers groups the REST handlers mounted under /api.
type Handlers struct {
	Documents *DocumentHandler
	Tests     *TestHandler
	Matrix    *MatrixHandler
	Rules     *RulesHandler
	Admin     *AdminHandler
}

// Register mounts every route on api. admin guards the /admin group.
func Register(api *gin.RouterGroup, h Handlers, admin ...gin.HandlerFunc) {
	actorsG := api.Group("/actors")
	actorsG.GET("", h.Documents.ListActors)
	actorsG.POST("", h.Documents.CreateActor)
	actorsG.GET("/:id", h.Documents.GetActor)
	actorsG.PATCH("/:id", h.Documents.PatchActor)
	actorsG.DELETE("/:id", h.Documents.DeleteActor)
	actorsG.GET("/:id/field", h.Documents.ActorField)
	actorsG.POST("/:id/prepare", h.Documents.PrepareActor)

	itemsG := api.Group("/items")
	itemsG.POST("", h.Documents.CreateItem)
	itemsG.GET("/:id", h.Documents.GetItem)
	itemsG.PATCH("/:id", h.Documents.PatchItem)
	itemsG.POST("/:id/prepare", h.Documents.PrepareItem)

	api.POST("/resolve", h.Documents.Resolve)

	testsG := api.Group("/tests")
	testsG.POST("", h.Tests.Begin)
	testsG.GET("/:id", h.Tests.Get)
	testsG.POST("/:id/dialog", h.Tests.Dialog)
	testsG.POST("/:id/evaluate", h.Tests.Evaluate)
	testsG.POST("/:id/extend", h.Tests.Extend)
	testsG.POST("/:id/opposed", h.Tests.Opposed)
	testsG.POST("/:id/follow-up", h.Tests.FollowUp)

	scenesG := api.Group("/scenes/:scene")
	scenesG.GET("/pending", h.Tests.Pending)
	scenesG.GET("/results", h.Tests.Results)
	scenesG.GET("/tests", h.Tests.History)

	hostsG := api.Group("/hosts/:id")
	hostsG.GET("/marks", h.Matrix.Marks)
	hostsG.POST("/marks", h.Matrix.SetMarks)
	hostsG.DELETE("/marks", h.Matrix.ClearMarks)
	hostsG.GET("/marks/:mark", h.Matrix.GetMark)
	hostsG.DELETE("/marks/:mark", h.Matrix.ClearMark)
	hostsG.GET("/documents", h.Matrix.MarkedDocuments)
	hostsG.GET("/ic", h.Matrix.ICOrder)
	hostsG.POST("/ic", h.Matrix.AddIC)
	hostsG.DELETE("/ic/:index", h.Matrix.RemoveIC)

	ctrlG := api.Group("/controllers/:id")
	ctrlG.GET("/devices", h.Matrix.Devices)
	ctrlG.POST("/devices", h.Matrix.AddDevice)
	ctrlG.DELETE("/devices", h.Matrix.RemoveAllDevices)
	ctrlG.DELETE("/devices/:index", h.Matrix.RemoveDevice)

	devG := api.Group("/devices/:id")
	devG.GET("/controller", h.Matrix.Controller)
	devG.PUT("/controller", h.Matrix.SetController)
	devG.DELETE("/network", h.Matrix.Disconnect)

	rulesG := api.Group("/rules")
	rulesG.GET("/initiative", h.Rules.Initiative)
	rulesG.POST("/initiative/order", h.Rules.InitiativeOrder)
	rulesG.GET("/host", h.Rules.Host)
	rulesG.GET("/drain", h.Rules.Drain)
	rulesG.GET("/spell-drain", h.Rules.SpellDrain)
	rulesG.POST("/knockdown", h.Rules.Knockdown)
	rulesG.POST("/attack", h.Rules.Attack)

	if h.Admin != nil {
		adminG := api.Group("/admin")
		adminG.Use(admin...)
		adminG.GET("/scheduler", h.Admin.ListSchedulerTasks)
		adminG.GET("/rules", h.Admin.Rules)
		adminG.POST("/sweep", h.Admin.Sweep)
		adminG.GET("/audit/tests/:id", h.Admin.TestAudit)
		adminG.POST("/audit/purge", h.Admin.PurgeAudit)
	}
}
