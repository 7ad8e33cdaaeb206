package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/middleware"
	"github.com/kahenya/sales-crm/models"
	"github.com/kahenya/sales-crm/store"
)

type UserHandler struct {
	users     *store.UserStore
	jwtSecret string
}

func NewUserHandler(users *store.UserStore, jwtSecret string) *UserHandler {
	return &UserHandler{users: users, jwtSecret: jwtSecret}
}

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a seller account. The password is stored only as a bcrypt
// hash.
func (h *UserHandler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}
	user := models.User{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and returns a signed bearer token.
func (h *UserHandler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil {
		respondError(c, apperr.ErrInvalidCredential)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		respondError(c, apperr.ErrInvalidCredential)
		return
	}

	token, err := auth.IssueToken(*user, h.jwtSecret)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the identity carried by the verified token.
func (h *UserHandler) Me(c *gin.Context) {
	ident, _ := middleware.CallerIdentity(c)
	c.JSON(http.StatusOK, ident)
}
