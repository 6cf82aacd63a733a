package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/HorizonteApps/clinic-scheduler/internal/audit"
	"github.com/HorizonteApps/clinic-scheduler/internal/availability"
	"github.com/HorizonteApps/clinic-scheduler/internal/config"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/handlers"
	infraRepo "github.com/HorizonteApps/clinic-scheduler/internal/infra/repository"
	"github.com/HorizonteApps/clinic-scheduler/internal/middleware"
	"github.com/HorizonteApps/clinic-scheduler/internal/payment"
	ucBooking "github.com/HorizonteApps/clinic-scheduler/internal/usecase/booking"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	provider payment.Provider,
	cfg *config.Config,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	scheduleRepo := infraRepo.NewScheduleGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	hub := fanout.NewHub()

	allocator := availability.NewAllocator(scheduleRepo)
	draftStore := availability.NewDraftStore(rdb)
	editor := availability.NewEditor(draftStore, scheduleRepo)

	reconciler := payment.NewReconciler(
		scheduleRepo,
		provider,
		hub,
		cfg.PaymentPollInterval,
		cfg.PaymentPollAttempts,
		cfg.ApprovalConfirmsBooking,
	)

	// ======================================================
	// USE CASES (AGENDAMENTOS)
	// ======================================================
	transitionUC := ucBooking.NewTransitionAppointment(
		scheduleRepo,
		hub,
		auditDispatcher,
		reconciler,
		cfg.Timezone,
	)

	// Payment outcomes drive transitions through the same serialized path.
	reconciler.BindBookings(transitionUC)

	createBookingUC := ucBooking.NewCreateBooking(
		scheduleRepo,
		allocator,
		hub,
		auditDispatcher,
		reconciler,
	)

	deleteBookingUC := ucBooking.NewDeleteBooking(
		scheduleRepo,
		hub,
		auditDispatcher,
	)

	listAppointmentsUC := ucBooking.NewListAppointmentsByDate(scheduleRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	availabilityHandler := handlers.NewAvailabilityHandler(editor, allocator)
	bookingHandler := handlers.NewBookingHandler(createBookingUC, transitionUC, listAppointmentsUC)
	adminHandler := handlers.NewAdminHandler(transitionUC, deleteBookingUC)
	paymentHandler := handlers.NewPaymentHandler(scheduleRepo, provider, reconciler)
	patientHandler := handlers.NewPatientHandler(scheduleRepo)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	wsHandler := handlers.NewWSHandler(hub, cfg)

	// ======================================================
	// CANAL EM TEMPO REAL
	// ======================================================
	r.GET("/ws", gin.WrapH(wsHandler.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA
		// ------------------------------
		api.GET("/public/professionals/:id/slots", availabilityHandler.PublicSlots)
		api.POST("/patients", patientHandler.Register)
		api.POST("/bookings", bookingHandler.Create)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// DISPONIBILIDADE
			// ------------------------------
			secured.GET("/me/availability", availabilityHandler.GetCommitted)
			secured.GET("/me/availability/draft", availabilityHandler.GetDraft)
			secured.PUT("/me/availability/draft", availabilityHandler.SaveDraft)
			secured.DELETE("/me/availability/draft", availabilityHandler.DiscardDraft)
			secured.POST("/me/availability/commit", availabilityHandler.Commit)
			secured.GET("/me/availability/next-slot", availabilityHandler.NextSlot)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/appointments", bookingHandler.ListByDate)
			secured.PATCH("/me/appointments/:id/confirm", bookingHandler.Confirm)
			secured.PATCH("/me/appointments/:id/complete", bookingHandler.Complete)
			secured.PATCH("/me/appointments/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/me/appointments/:id/no-show", bookingHandler.NoShow)

			// ------------------------------
			// PAGAMENTOS
			// ------------------------------
			secured.POST("/me/appointments/:id/payment", paymentHandler.Attach)
			secured.GET("/payments/:ref/status", paymentHandler.Status)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.PATCH("/appointments/:id/cancel", adminHandler.ForceCancel)
				admin.DELETE("/appointments/:id", adminHandler.Delete)
			}
		}
	}
}
