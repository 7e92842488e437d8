package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/database/members"
	"github.com/neighborhood-library/api-service/internal/database/users"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// AuthController serves signup, login and profile endpoints.
type AuthController struct {
	users   *users.Repository
	members *members.Repository
	cfg     config.Auth
}

func NewAuthController(usersRepo *users.Repository, membersRepo *members.Repository, cfg config.Auth) *AuthController {
	return &AuthController{users: usersRepo, members: membersRepo, cfg: cfg}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	Role        entities.Role `json:"role"`
	UserID      uint          `json:"user_id"`
}

type profileUpdateRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	ProfilePicture *string `json:"profile_picture"`
	Password       *string `json:"password" binding:"omitempty,min=6"`
}

type profileResponse struct {
	User   *entities.User   `json:"user"`
	Member *entities.Member `json:"member"`
}

// Signup handles POST /api/auth/signup: creates a member (reusing one that
// already holds the email) plus a member-role user, and returns a token.
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if _, err := ctrl.users.GetByEmail(req.Email); err == nil {
		respondConflict(c, users.ErrDuplicateEmail.Error())
		return
	}

	var memberID uint
	existing, err := ctrl.members.GetByEmail(req.Email)
	switch {
	case err == nil:
		memberID = existing.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		member := entities.Member{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		}
		if err := ctrl.members.Create(&member, nil); err != nil {
			respondInternalError(c, err, "signup create member")
			return
		}
		memberID = member.ID
	default:
		respondInternalError(c, err, "signup member lookup")
		return
	}

	hash, err := auth.HashPassword(req.Password, ctrl.cfg.BcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user := entities.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         entities.RoleMember,
		MemberID:     &memberID,
		IsActive:     true,
	}
	switch err := ctrl.users.Create(&user); {
	case errors.Is(err, users.ErrDuplicateEmail):
		respondConflict(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "signup create user")
		return
	}

	ctrl.respondWithToken(c, &user, http.StatusCreated)
}

// Login handles POST /api/auth/login (and its /signin alias).
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := ctrl.users.GetByEmail(req.Email)
	if err != nil || auth.CheckPassword(req.Password, user.PasswordHash) != nil {
		respondUnauthorized(c, "incorrect email or password")
		return
	}

	if !user.IsActive {
		respondForbidden(c, "user account is inactive")
		return
	}

	ctrl.respondWithToken(c, user, http.StatusOK)
}

// Me handles GET /api/auth/me.
func (ctrl *AuthController) Me(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	user, err := ctrl.users.GetByID(principal.UserID)
	if err != nil {
		respondInternalError(c, err, "get current user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetProfile handles GET /api/profile.
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	user, err := ctrl.users.GetByID(principal.UserID)
	if err != nil {
		respondInternalError(c, err, "get profile user")
		return
	}
	c.JSON(http.StatusOK, profileResponse{User: user, Member: ctrl.memberOf(user)})
}

// UpdateProfile handles PUT /api/profile. Member fields update the linked
// member row; admins without a member profile get one created on demand.
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := ctrl.users.GetByID(principal.UserID)
	if err != nil {
		respondInternalError(c, err, "update profile user")
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := ctrl.users.EmailTaken(*req.Email, user.ID)
		if err != nil {
			respondInternalError(c, err, "update profile email check")
			return
		}
		if taken {
			respondConflict(c, "email already exists")
			return
		}
	}

	if user.MemberID != nil {
		_, err := ctrl.members.Update(*user.MemberID, members.Update{
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			ProfilePicture: req.ProfilePicture,
		}, nil)
		switch {
		case errors.Is(err, members.ErrDuplicateEmail):
			respondConflict(c, err.Error())
			return
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			respondInternalError(c, err, "update profile member")
			return
		}
	} else if req.Name != nil || req.Phone != nil || req.ProfilePicture != nil {
		member := entities.Member{
			Name:  strings.SplitN(user.Email, "@", 2)[0],
			Email: user.Email,
		}
		if req.Name != nil {
			member.Name = *req.Name
		}
		if req.Email != nil {
			member.Email = *req.Email
		}
		if req.Phone != nil {
			member.Phone = *req.Phone
		}
		if req.ProfilePicture != nil {
			member.ProfilePicture = *req.ProfilePicture
		}
		if err := ctrl.members.Create(&member, nil); err != nil {
			respondInternalError(c, err, "update profile create member")
			return
		}
		user.MemberID = &member.ID
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, ctrl.cfg.BcryptCost)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		user.PasswordHash = hash
	}

	if err := ctrl.users.Save(user); err != nil {
		respondInternalError(c, err, "update profile save user")
		return
	}

	c.JSON(http.StatusOK, profileResponse{User: user, Member: ctrl.memberOf(user)})
}

func (ctrl *AuthController) memberOf(user *entities.User) *entities.Member {
	if user.MemberID == nil {
		return nil
	}
	member, err := ctrl.members.GetByID(*user.MemberID)
	if err != nil {
		return nil
	}
	return member
}

func (ctrl *AuthController) respondWithToken(c *gin.Context, user *entities.User, status int) {
	token, err := auth.IssueToken(user.ID, user.Role, ctrl.cfg.JWTSecret, ctrl.cfg.TokenExpiry)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}
	c.JSON(status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		UserID:      user.ID,
	})
}
