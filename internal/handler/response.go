package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/service"
)

// ErrorCode is the machine-readable error code of a response.
type ErrorCode string

const (
	ErrorNotFound         ErrorCode = "NOT_FOUND"
	ErrorForbidden        ErrorCode = "FORBIDDEN"
	ErrorConflict         ErrorCode = "CONFLICT"
	ErrorInvalidState     ErrorCode = "INVALID_STATE"
	ErrorInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrorValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorNoPaymentMethod  ErrorCode = "NO_PAYMENT_METHOD"
	ErrorPaymentFailed    ErrorCode = "PAYMENT_FAILED"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents error response structure.
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// TeamEnvelope wraps team data.
type TeamEnvelope struct {
	Team *TeamResponse `json:"team"`
}

// TeamResponse represents a team in responses.
type TeamResponse struct {
	TeamID    string               `json:"team_id"`
	Name      string               `json:"name"`
	OwnerID   string               `json:"owner_id"`
	Members   []TeamMemberResponse `json:"members"`
	CreatedAt time.Time            `json:"created_at"`
}

// TeamMemberResponse represents a team member in responses.
type TeamMemberResponse struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	InvitationStatus string `json:"invitation_status"`
}

// CustomerResponse wraps the payment customer reference.
type CustomerResponse struct {
	CustomerID string `json:"customer_id"`
}

// PaymentMethodsResponse wraps the user's cards.
type PaymentMethodsResponse struct {
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
}

// NotificationsResponse wraps a notification listing.
type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// NotificationEnvelope wraps one notification.
type NotificationEnvelope struct {
	Notification *domain.Notification `json:"notification"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func toTeamResponse(team *domain.Team) *TeamResponse {
	members := make([]TeamMemberResponse, len(team.Members))
	for i, m := range team.Members {
		members[i] = TeamMemberResponse{
			UserID:           m.UserID,
			Email:            m.Email,
			Name:             m.Name,
			Role:             string(m.Role),
			InvitationStatus: string(m.InvitationStatus),
		}
	}
	return &TeamResponse{
		TeamID:    team.TeamID,
		Name:      team.Name,
		OwnerID:   team.OwnerID,
		Members:   members,
		CreatedAt: team.CreatedAt,
	}
}

// Error sends error response.
func Error(c *gin.Context, code ErrorCode, message string, statusCode int) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.JSON(statusCode, resp)
}

// BadRequest sends 400 error.
func BadRequest(c *gin.Context, message string) {
	Error(c, ErrorValidation, message, http.StatusBadRequest)
}

// InternalError sends 500 error.
func InternalError(c *gin.Context, message string) {
	Error(c, ErrorInternal, message, http.StatusInternalServerError)
}

// ServiceError maps a service error to its HTTP status by kind.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, ErrorNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		Error(c, ErrorForbidden, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrConflict):
		Error(c, ErrorConflict, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidState):
		Error(c, ErrorInvalidState, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidOperation):
		Error(c, ErrorInvalidOperation, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrValidation):
		Error(c, ErrorValidation, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNoPaymentMethod):
		Error(c, ErrorNoPaymentMethod, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, service.ErrPaymentFailed):
		Error(c, ErrorPaymentFailed, err.Error(), http.StatusPaymentRequired)
	default:
		_ = c.Error(err)
		InternalError(c, "internal server error")
	}
}
