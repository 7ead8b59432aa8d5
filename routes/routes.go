package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/config"
	"hotel-frontdesk/controllers"
	"hotel-frontdesk/middleware"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	Booking  *controllers.BookingController
	Room     *controllers.RoomController
	RoomType *controllers.RoomTypeController
	Customer *controllers.CustomerController
	Expense  *controllers.ExpenseController
	Settings *controllers.SettingsController
}

// SetupRouter wires middleware and routes. Reads are public; every mutating
// route and the money views require a bearer token.
func SetupRouter(cfg config.Config, logger *logrus.Logger, verifier auth.Verifier, ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Environment(cfg.AppEnv))
	r.Use(middleware.SecureHeaders(!cfg.IsDevelopment()))

	if cfg.StorageDriver == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(verifier, logger)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", ctl.Auth.Login)
			authRoutes.GET("/me", requireAuth, ctl.Auth.Me)
		}
		api.POST("/users", requireAuth, ctl.Auth.CreateUser)

		api.GET("/booking-availability", ctl.Room.GetBookingAvailability)

		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctl.Room.GetRooms)
			// must stay before /:id
			rooms.POST("/reconcile", requireAuth, ctl.Room.ReconcileRooms)
			rooms.GET("/:id", ctl.Room.GetRoom)
			rooms.POST("", requireAuth, ctl.Room.CreateRoom)
			rooms.PUT("/:id", requireAuth, ctl.Room.UpdateRoom)
			rooms.PATCH("/:id/status", requireAuth, ctl.Room.UpdateRoomStatus)
			rooms.DELETE("/:id", requireAuth, ctl.Room.DeleteRoom)
		}

		roomTypes := api.Group("/room-types")
		{
			roomTypes.GET("", ctl.RoomType.GetRoomTypes)
			roomTypes.POST("", requireAuth, ctl.RoomType.CreateRoomType)
			roomTypes.PUT("/:id", requireAuth, ctl.RoomType.UpdateRoomType)
			roomTypes.DELETE("/:id", requireAuth, ctl.RoomType.DeleteRoomType)
		}

		floors := api.Group("/floors")
		{
			floors.GET("", ctl.RoomType.GetFloors)
			floors.POST("", requireAuth, ctl.RoomType.CreateFloor)
			floors.DELETE("/:id", requireAuth, ctl.RoomType.DeleteFloor)
		}

		customers := api.Group("/customers", requireAuth)
		{
			customers.GET("", ctl.Customer.GetCustomers)
			customers.POST("", ctl.Customer.CreateCustomer)
			customers.GET("/:id", ctl.Customer.GetCustomer)
			customers.POST("/:id/images", ctl.Customer.UploadImage)
		}

		bookings := api.Group("/bookings", requireAuth)
		{
			bookings.GET("", ctl.Booking.GetBookings)
			bookings.POST("", ctl.Booking.CreateBooking)
			bookings.PUT("", ctl.Booking.UpdateBooking)
			bookings.POST("/refund", ctl.Booking.RefundBooking)

			bookings.GET("/:id", ctl.Booking.GetBookingDetails)
			bookings.POST("/:id/checkin", ctl.Booking.CheckInBooking)
			bookings.POST("/:id/checkout", ctl.Booking.CheckoutBooking)
			bookings.POST("/:id/rooms/:roomId/checkout", ctl.Booking.CheckoutRoom)
			bookings.POST("/:id/cancel", ctl.Booking.CancelBooking)

			bookings.GET("/:id/payments", ctl.Booking.GetPayments)
			bookings.POST("/:id/payments", ctl.Booking.AddPayment)
			bookings.GET("/:id/services", ctl.Booking.GetCharges)
			bookings.POST("/:id/services", ctl.Booking.AddCharge)
			bookings.POST("/:id/bill", ctl.Booking.GenerateBill)
		}

		api.DELETE("/services/:id", requireAuth, ctl.Booking.DeleteCharge)
		api.GET("/bills/:id", requireAuth, ctl.Booking.GetBill)

		expenses := api.Group("/expenses", requireAuth)
		{
			expenses.GET("", ctl.Expense.GetExpenses)
			expenses.POST("", ctl.Expense.CreateExpense)
			expenses.DELETE("/:id", ctl.Expense.DeleteExpense)
		}
		api.GET("/reports/summary", requireAuth, ctl.Expense.GetSummary)

		settings := api.Group("/settings")
		{
			settings.GET("/hotel", ctl.Settings.GetHotelSettings)
			settings.PUT("/hotel", requireAuth, ctl.Settings.UpdateHotelSettings)
		}
	}

	return r
}
