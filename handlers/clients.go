package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kahenya/sales-crm/middleware"
	"github.com/kahenya/sales-crm/models"
	"github.com/kahenya/sales-crm/service"
	"github.com/kahenya/sales-crm/store"
)

type ClientHandler struct {
	clients *store.ClientStore
}

func NewClientHandler(clients *store.ClientStore) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// ListMine returns the clients owned by the caller.
func (h *ClientHandler) ListMine(c *gin.Context) {
	ident, _ := middleware.CallerIdentity(c)
	clients, err := h.clients.ListBySeller(c.Request.Context(), ident.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// Get returns a single client; only its owning seller may see it.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	client, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := service.AuthorizeClient(client, ident); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

type clientInput struct {
	Name    string `json:"name" binding:"required"`
	Surname string `json:"surname" binding:"required"`
	Company string `json:"company" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
}

// Create registers a client owned by the caller.
func (h *ClientHandler) Create(c *gin.Context) {
	var input clientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	client := models.Client{
		Name:     input.Name,
		Surname:  input.Surname,
		Company:  input.Company,
		Email:    input.Email,
		Phone:    input.Phone,
		SellerID: ident.ID,
	}
	if err := h.clients.Create(c.Request.Context(), &client); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input clientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	client, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := service.AuthorizeClient(client, ident); err != nil {
		respondError(c, err)
		return
	}
	client.Name = input.Name
	client.Surname = input.Surname
	client.Company = input.Company
	client.Email = input.Email
	client.Phone = input.Phone
	if err := h.clients.Update(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	client, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := service.AuthorizeClient(client, ident); err != nil {
		respondError(c, err)
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}
