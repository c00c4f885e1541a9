package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/middleware"
)

// TeamHandler handles team-related HTTP requests.
type TeamHandler struct {
	teamService TeamServiceInterface
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(teamService TeamServiceInterface) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam handles POST /api/teams.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TeamEnvelope{Team: toTeamResponse(team)})
}

// GetMyTeam handles GET /api/teams/my-team.
func (h *TeamHandler) GetMyTeam(c *gin.Context) {
	team, err := h.teamService.GetMyTeam(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TeamEnvelope{Team: toTeamResponse(team)})
}

// GetTeam handles GET /api/teams/:id.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, TeamEnvelope{Team: toTeamResponse(team)})
}

// Invite handles POST /api/teams/:id/invite.
func (h *TeamHandler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "a valid email is required")
		return
	}

	result, err := h.teamService.Invite(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Email, req.Name)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AcceptInvitation handles POST /api/teams/:id/accept-invitation.
// The invitee is the caller.
func (h *TeamHandler) AcceptInvitation(c *gin.Context) {
	if err := h.teamService.AcceptInvitation(c.Request.Context(), c.Param("id"), middleware.Email(c)); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Invitation accepted successfully"})
}

// RejectInvitation handles POST /api/teams/:id/reject-invitation.
func (h *TeamHandler) RejectInvitation(c *gin.Context) {
	if err := h.teamService.RejectInvitation(c.Request.Context(), c.Param("id"), middleware.Email(c)); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Invitation rejected"})
}

// RemoveMember handles DELETE /api/teams/:id/members/:userId.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	err := h.teamService.RemoveMember(c.Request.Context(), c.Param("id"), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Member removed successfully"})
}

// DeleteTeam handles DELETE /api/teams/:id.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	if err := h.teamService.DeleteTeam(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Team deleted successfully"})
}
