package routes

import (
	"time"

	parcelController "parcel-delivery/controllers/parcel"
	paymentController "parcel-delivery/controllers/payment"
	riderController "parcel-delivery/controllers/rider"
	trackingController "parcel-delivery/controllers/tracking"
	userController "parcel-delivery/controllers/user"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	"parcel-delivery/services/events"
	parcelService "parcel-delivery/services/parcel"
	paymentService "parcel-delivery/services/payment"
	riderService "parcel-delivery/services/rider"
	trackingService "parcel-delivery/services/tracking"
	userService "parcel-delivery/services/user"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the routes are built from. Publisher
// and Logger may be nil.
type Dependencies struct {
	DB        *gorm.DB
	Verifier  middleware.TokenVerifier
	Processor paymentService.ChargeIntentCreator
	Publisher events.Publisher
	Logger    *logger.AsyncLogger
}

// Config is the fiber configuration the server runs with. Path parameters
// are unescaped so emails sent as a%40x.com resolve.
func Config() fiber.Config {
	return fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       4 * 1024 * 1024,
		UnescapePath:    true,
	}
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	users := userService.NewUserService(deps.DB)
	parcels := parcelService.NewParcelService(deps.DB, deps.Publisher)
	riders := riderService.NewRiderService(deps.DB, deps.Publisher)
	tracking := trackingService.NewTrackingService(deps.DB)
	payments := paymentService.NewPaymentService(deps.DB, deps.Processor, deps.Publisher)

	auth := middleware.NewAuth(deps.Verifier, users, deps.Logger)
	authenticated := auth.RequireAuthenticated()
	admin := auth.RequireAdmin()

	userCtl := userController.NewUserController(users, deps.Logger)
	parcelCtl := parcelController.NewParcelController(parcels, users, deps.Logger)
	riderCtl := riderController.NewRiderController(riders, deps.Logger)
	trackingCtl := trackingController.NewTrackingController(tracking, deps.Logger)
	paymentCtl := paymentController.NewPaymentController(payments, deps.Logger)

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(types.ApiResponse{
			Message: "Parcel delivery server is running",
			Status:  fiber.StatusOK,
		})
	})

	/*=============================================================================
	| User Routes
	===============================================================================*/
	userGroup := app.Group("/users")
	userGroup.Post("/", userCtl.Login)
	userGroup.Get("/role-by-email/:email", authenticated, userCtl.GetRoleByEmail)
	userGroup.Get("/search/:keyword", authenticated, admin, userCtl.Search)
	userGroup.Get("/role/:role", authenticated, admin, userCtl.ListByRole)
	userGroup.Patch("/admin/:email", authenticated, admin, userCtl.MakeAdmin)
	userGroup.Patch("/remove-admin/:email", authenticated, admin, userCtl.RemoveAdmin)

	/*=============================================================================
	| Parcel Routes
	===============================================================================*/
	parcelGroup := app.Group("/parcels", authenticated)
	parcelGroup.Get("/", parcelCtl.Index)
	parcelGroup.Post("/", parcelCtl.Store)
	parcelGroup.Get("/:id", parcelCtl.Show)
	parcelGroup.Delete("/:id", parcelCtl.Destroy)
	parcelGroup.Patch("/:id/assign", admin, parcelCtl.AssignRider)
	parcelGroup.Patch("/:id/delivery-status", parcelCtl.UpdateDeliveryStatus)

	/*=============================================================================
	| Rider Routes
	===============================================================================*/
	riderGroup := app.Group("/riders", authenticated)
	riderGroup.Post("/", riderCtl.Apply)
	riderGroup.Get("/pending", admin, riderCtl.Pending)
	riderGroup.Get("/active", admin, riderCtl.Active)
	riderGroup.Patch("/approve/:id", admin, riderCtl.Approve)
	riderGroup.Patch("/deactivate/:id", admin, riderCtl.Deactivate)
	riderGroup.Delete("/cancel/:id", admin, riderCtl.Cancel)

	/*=============================================================================
	| Tracking Routes
	===============================================================================*/
	trackingGroup := app.Group("/tracking", authenticated)
	trackingGroup.Post("/", trackingCtl.Store)
	trackingGroup.Get("/:trackingId", trackingCtl.Show)

	/*=============================================================================
	| Payment Routes
	===============================================================================*/
	app.Post("/create-payment-intent", authenticated, paymentCtl.CreateIntent)
	paymentGroup := app.Group("/payments", authenticated)
	paymentGroup.Get("/", paymentCtl.Index)
	paymentGroup.Post("/", paymentCtl.Store)
}
