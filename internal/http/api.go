package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teamhub/internal/auth"
	"teamhub/internal/domain"
	"teamhub/internal/repository"
	"teamhub/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth   service.AuthService
	team   service.TeamService
	tokens *auth.TokenManager
	logger *logrus.Logger
}

func NewHandler(authSvc service.AuthService, team service.TeamService, tokens *auth.TokenManager, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:   authSvc,
		team:   team,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/news", h.listNews)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ok",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		protected := api.Group("", authRequired(h.tokens))
		{
			protected.GET("/events", h.listEvents)
			protected.GET("/events/:id", h.getEvent)
			protected.POST("/events/:id/confirmation", h.submitConfirmation)
			protected.GET("/events/:id/confirmations", h.listConfirmations)
			protected.GET("/players", h.listPlayers)
			protected.GET("/messages", h.listMessages)
			protected.GET("/stats", h.stats)

			trainer := protected.Group("", requireRole(domain.RoleTrainer))
			{
				trainer.POST("/events", h.createEvent)
				trainer.PUT("/events/:id", h.updateEvent)
				trainer.DELETE("/events/:id", h.deleteEvent)
				trainer.POST("/players", h.createPlayer)
				trainer.POST("/messages", h.sendMessage)
				trainer.POST("/news", h.createNews)
			}
		}
	}
}

// fail maps service and repository errors onto the response taxonomy.
// Internal failures are logged with their detail and reported generically.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.WithField("request_id", c.GetString("request_id")).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ---- auth ----

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=trainer parent player"`
	PlayerID *int64 `json:"player_id"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	PlayerID *int64 `json:"player_id,omitempty"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
		PlayerID: req.PlayerID,
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": userToResponse(user)})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": userToResponse(user)})
}

// ---- events ----

type createEventRequest struct {
	Type        string `json:"type" binding:"required,oneof=training match tournament other"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string `json:"time" binding:"required,datetime=15:04"`
	EndTime     string `json:"end_time" binding:"omitempty,datetime=15:04"`
	Location    string `json:"location" binding:"required"`
	Opponent    string `json:"opponent"`
}

// updateEventRequest is the explicit allow-list of mutable event fields;
// absent fields stay untouched.
type updateEventRequest struct {
	Type        *string `json:"type" binding:"omitempty,oneof=training match tournament other"`
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Date        *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time        *string `json:"time" binding:"omitempty,datetime=15:04"`
	EndTime     *string `json:"end_time" binding:"omitempty,datetime=15:04"`
	Location    *string `json:"location" binding:"omitempty,min=1"`
	Opponent    *string `json:"opponent"`
	Status      *string `json:"status"`
}

type EventResponse struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	EndTime        string `json:"end_time"`
	Location       string `json:"location"`
	Opponent       string `json:"opponent"`
	Status         string `json:"status"`
	CreatedBy      int64  `json:"created_by"`
	CreatedAt      string `json:"created_at"`
	ConfirmedCount int    `json:"confirmed_count"`
	DeclinedCount  int    `json:"declined_count"`
}

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.team.ListEvents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = eventToResponse(events[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	event, err := h.team.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, eventToResponse(*event))
}

func (h *Handler) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	claims := callerClaims(c)
	event, err := h.team.CreateEvent(c.Request.Context(), &domain.Event{
		Type:        domain.EventType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Opponent:    req.Opponent,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, eventToResponse(*event))
}

func (h *Handler) updateEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	update := repository.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Opponent:    req.Opponent,
		Status:      req.Status,
	}
	if req.Type != nil {
		t := domain.EventType(*req.Type)
		update.Type = &t
	}

	if err := h.team.UpdateEvent(c.Request.Context(), id, update); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *Handler) deleteEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.team.DeleteEvent(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ---- confirmations ----

type submitConfirmationRequest struct {
	Status   string `json:"status" binding:"required,oneof=confirmed declined maybe"`
	PlayerID int64  `json:"player_id" binding:"required,gte=1"`
	Comment  string `json:"comment"`
}

type ConfirmationResponse struct {
	ID           int64  `json:"id"`
	EventID      int64  `json:"event_id"`
	PlayerID     int64  `json:"player_id"`
	UserID       int64  `json:"user_id"`
	Status       string `json:"status"`
	Comment      string `json:"comment"`
	ConfirmedAt  string `json:"confirmed_at"`
	PlayerName   string `json:"player_name"`
	PlayerNumber int    `json:"player_number"`
	ConfirmedBy  string `json:"confirmed_by"`
}

func (h *Handler) submitConfirmation(c *gin.Context) {
	eventID, ok := idParam(c)
	if !ok {
		return
	}

	var req submitConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	claims := callerClaims(c)
	confirmation := &domain.Confirmation{
		EventID:  eventID,
		PlayerID: req.PlayerID,
		UserID:   claims.UserID,
		Status:   domain.ConfirmationStatus(req.Status),
		Comment:  req.Comment,
	}
	if err := h.team.SubmitConfirmation(c.Request.Context(), confirmation); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":     confirmation.EventID,
		"player_id":    confirmation.PlayerID,
		"status":       confirmation.Status,
		"confirmed_at": confirmation.ConfirmedAt.Format(time.RFC3339),
	})
}

func (h *Handler) listConfirmations(c *gin.Context) {
	eventID, ok := idParam(c)
	if !ok {
		return
	}

	confirmations, err := h.team.ListConfirmations(c.Request.Context(), eventID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]ConfirmationResponse, len(confirmations))
	for i := range confirmations {
		resp[i] = confirmationToResponse(confirmations[i])
	}
	c.JSON(http.StatusOK, resp)
}

// ---- players ----

type createPlayerRequest struct {
	Name      string `json:"name" binding:"required"`
	Number    int    `json:"number" binding:"required,gte=1,lte=99"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Position  string `json:"position"`
}

type PlayerResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Number    int    `json:"number"`
	BirthDate string `json:"birth_date"`
	Position  string `json:"position"`
	Status    string `json:"status"`
}

func (h *Handler) listPlayers(c *gin.Context) {
	players, err := h.team.ListPlayers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]PlayerResponse, len(players))
	for i := range players {
		resp[i] = playerToResponse(players[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createPlayer(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	player, err := h.team.CreatePlayer(c.Request.Context(), &domain.Player{
		Name:      req.Name,
		Number:    req.Number,
		BirthDate: req.BirthDate,
		Position:  req.Position,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, playerToResponse(*player))
}

// ---- messages ----

type sendMessageRequest struct {
	Subject       string `json:"subject" binding:"required"`
	Content       string `json:"content" binding:"required"`
	RecipientType string `json:"recipient_type" binding:"required,oneof=all parents players"`
	EventID       *int64 `json:"event_id"`
}

type MessageResponse struct {
	ID            int64  `json:"id"`
	SenderID      int64  `json:"sender_id"`
	Subject       string `json:"subject"`
	Content       string `json:"content"`
	RecipientType string `json:"recipient_type"`
	EventID       *int64 `json:"event_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	SenderName    string `json:"sender_name"`
}

func (h *Handler) listMessages(c *gin.Context) {
	claims := callerClaims(c)
	messages, err := h.team.ListMessages(c.Request.Context(), claims.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]MessageResponse, len(messages))
	for i := range messages {
		resp[i] = messageToResponse(messages[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	claims := callerClaims(c)
	msg, err := h.team.SendMessage(c.Request.Context(), &domain.Message{
		SenderID:      claims.UserID,
		Subject:       req.Subject,
		Content:       req.Content,
		RecipientType: domain.RecipientType(req.RecipientType),
		EventID:       req.EventID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageToResponse(*msg))
}

// ---- news ----

type createNewsRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Published bool   `json:"published"`
}

type NewsResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   int64  `json:"author_id"`
	Published  bool   `json:"published"`
	CreatedAt  string `json:"created_at"`
	AuthorName string `json:"author_name,omitempty"`
}

func (h *Handler) listNews(c *gin.Context) {
	articles, err := h.team.ListNews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]NewsResponse, len(articles))
	for i := range articles {
		resp[i] = newsToResponse(articles[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createNews(c *gin.Context) {
	var req createNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
		return
	}

	claims := callerClaims(c)
	article, err := h.team.PublishNews(c.Request.Context(), &domain.News{
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  claims.UserID,
		Published: req.Published,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, newsToResponse(*article))
}

// ---- stats ----

type StatsResponse struct {
	TotalPlayers        int                 `json:"totalPlayers"`
	NextEvent           *EventResponse      `json:"nextEvent,omitempty"`
	NextEventAttendance *AttendanceResponse `json:"nextEventAttendance,omitempty"`
}

type AttendanceResponse struct {
	Confirmed int `json:"confirmed"`
	Declined  int `json:"declined"`
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.team.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := StatsResponse{TotalPlayers: stats.TotalPlayers}
	if stats.NextEvent != nil {
		event := eventToResponse(*stats.NextEvent)
		resp.NextEvent = &event
	}
	if stats.NextEventAttendance != nil {
		resp.NextEventAttendance = &AttendanceResponse{
			Confirmed: stats.NextEventAttendance.Confirmed,
			Declined:  stats.NextEventAttendance.Declined,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ---- mapping ----

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     string(user.Role),
		PlayerID: user.PlayerID,
	}
}

func eventToResponse(event domain.Event) EventResponse {
	return EventResponse{
		ID:             event.ID,
		Type:           string(event.Type),
		Title:          event.Title,
		Description:    event.Description,
		Date:           event.Date,
		Time:           event.Time,
		EndTime:        event.EndTime,
		Location:       event.Location,
		Opponent:       event.Opponent,
		Status:         event.Status,
		CreatedBy:      event.CreatedBy,
		CreatedAt:      event.CreatedAt.Format(time.RFC3339),
		ConfirmedCount: event.ConfirmedCount,
		DeclinedCount:  event.DeclinedCount,
	}
}

func confirmationToResponse(c domain.Confirmation) ConfirmationResponse {
	return ConfirmationResponse{
		ID:           c.ID,
		EventID:      c.EventID,
		PlayerID:     c.PlayerID,
		UserID:       c.UserID,
		Status:       string(c.Status),
		Comment:      c.Comment,
		ConfirmedAt:  c.ConfirmedAt.Format(time.RFC3339),
		PlayerName:   c.PlayerName,
		PlayerNumber: c.PlayerNumber,
		ConfirmedBy:  c.ConfirmedBy,
	}
}

func playerToResponse(p domain.Player) PlayerResponse {
	return PlayerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Number:    p.Number,
		BirthDate: p.BirthDate,
		Position:  p.Position,
		Status:    string(p.Status),
	}
}

func messageToResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		SenderID:      m.SenderID,
		Subject:       m.Subject,
		Content:       m.Content,
		RecipientType: string(m.RecipientType),
		EventID:       m.EventID,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		SenderName:    m.SenderName,
	}
}

func newsToResponse(n domain.News) NewsResponse {
	return NewsResponse{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		AuthorID:   n.AuthorID,
		Published:  n.Published,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		AuthorName: n.AuthorName,
	}
}
