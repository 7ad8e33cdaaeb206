package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/config"
	"github.com/kahenya/sales-crm/models"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// Fresh in-memory DB per test, named after the test so tests stay isolated.
func getTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func getTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := getTestDB(t)
	return SetupRouter(db, nil, testSecret, nil), db
}

func getTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a seller through the API and returns a usable
// bearer token.
func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(router, "POST", "/register", "", map[string]interface{}{
		"name":     "Grace",
		"surname":  "Mwangi",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, "POST", "/login", "", map[string]interface{}{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createProduct(t *testing.T, db *gorm.DB, name string, stock int, price float64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Stock: stock, Price: price}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func createClient(t *testing.T, db *gorm.DB, email string, sellerID uint) models.Client {
	t.Helper()
	cl := models.Client{Name: "Ada", Surname: "Otieno", Company: "Acme", Email: email, SellerID: sellerID}
	require.NoError(t, db.Create(&cl).Error)
	return cl
}

func TestHealth(t *testing.T) {
	router, _ := getTestRouter(t)
	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "grace@example.com")

	// The token must resolve to the registered identity.
	w := doJSON(router, "GET", "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "grace@example.com", me.Email)
	assert.Equal(t, "Grace", me.Name)
	assert.Equal(t, "Mwangi", me.Surname)

	// The password is stored only as a hash.
	var user models.User
	require.NoError(t, db.Where("email = ?", "grace@example.com").First(&user).Error)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := getTestRouter(t)
	registerAndLogin(t, router, "dup@example.com")

	w := doJSON(router, "POST", "/register", "", map[string]interface{}{
		"name":     "Other",
		"surname":  "Person",
		"email":    "dup@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := getTestRouter(t)
	registerAndLogin(t, router, "grace@example.com")

	w := doJSON(router, "POST", "/login", "", map[string]interface{}{
		"email":    "grace@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/login", "", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	router, _ := getTestRouter(t)
	w := doJSON(router, "GET", "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "GET", "/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductCRUD(t *testing.T) {
	router, _ := getTestRouter(t)

	w := doJSON(router, "POST", "/products", "", map[string]interface{}{
		"name":  "Widget",
		"stock": 10,
		"price": 5.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 10, created.Stock)

	w = doJSON(router, "GET", fmt.Sprintf("/products/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "PUT", fmt.Sprintf("/products/%d", created.ID), "", map[string]interface{}{
		"name":  "Widget Pro",
		"stock": 8,
		"price": 6.5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, 8, updated.Stock)

	w = doJSON(router, "DELETE", fmt.Sprintf("/products/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/products/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateFreeProduct(t *testing.T) {
	router, _ := getTestRouter(t)

	w := doJSON(router, "POST", "/products", "", map[string]interface{}{
		"name":  "Sample Sachet",
		"stock": 100,
		"price": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 0.0, created.Price)

	w = doJSON(router, "PUT", fmt.Sprintf("/products/%d", created.ID), "", map[string]interface{}{
		"name":  "Sample Sachet",
		"stock": 90,
		"price": 0,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// A cached product read must reflect stock changes made by the order
// workflow, not the pre-order snapshot.
func TestProductCacheInvalidatedByOrders(t *testing.T) {
	db := getTestDB(t)
	rdb := getTestRedis(t)
	router := SetupRouter(db, rdb, testSecret, nil)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 10, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	productPath := fmt.Sprintf("/products/%d", product.ID)
	readStock := func() int {
		w := doJSON(router, "GET", productPath, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		return p.Stock
	}

	// Warm the cache, then place an order against the product.
	require.Equal(t, 10, readStock())

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 6, readStock())

	// Re-warm, then revise with new items; the revision decrements again.
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, 6, readStock())

	w = doJSON(router, "PUT", fmt.Sprintf("/orders/%d", order.ID), token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 4, readStock())
}

func TestProductSearch(t *testing.T) {
	router, db := getTestRouter(t)
	createProduct(t, db, "Espresso Machine", 3, 250)
	createProduct(t, db, "Espresso Cups", 40, 12)
	createProduct(t, db, "Tea Pot", 7, 18)

	w := doJSON(router, "GET", "/products/search?q=Espresso", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Len(t, found, 2)

	w = doJSON(router, "GET", "/products/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientOwnership(t *testing.T) {
	router, _ := getTestRouter(t)
	owner := registerAndLogin(t, router, "owner@example.com")
	intruder := registerAndLogin(t, router, "intruder@example.com")

	w := doJSON(router, "POST", "/clients", owner, map[string]interface{}{
		"name":    "Ada",
		"surname": "Otieno",
		"company": "Acme",
		"email":   "ada@acme.com",
		"phone":   "0712345678",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))

	path := fmt.Sprintf("/clients/%d", client.ID)

	// The owner can read, the other seller cannot.
	assert.Equal(t, http.StatusOK, doJSON(router, "GET", path, owner, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "GET", path, intruder, nil).Code)

	update := map[string]interface{}{
		"name":    "Ada",
		"surname": "Otieno",
		"company": "Acme Ltd",
		"email":   "ada@acme.com",
		"phone":   "0712345678",
	}
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "PUT", path, intruder, update).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "DELETE", path, intruder, nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "PUT", path, owner, update).Code)

	// Mine listing only shows the caller's clients.
	w = doJSON(router, "GET", "/clients/mine", intruder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Empty(t, mine)

	assert.Equal(t, http.StatusOK, doJSON(router, "DELETE", path, owner, nil).Code)
}

func TestClientDuplicateEmail(t *testing.T) {
	router, _ := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	body := map[string]interface{}{
		"name":    "Ada",
		"surname": "Otieno",
		"company": "Acme",
		"email":   "ada@acme.com",
	}
	require.Equal(t, http.StatusCreated, doJSON(router, "POST", "/clients", token, body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(router, "POST", "/clients", token, body).Code)
}

func TestPlaceOrderStockMath(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 10, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 4},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 20.0, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, seller.ID, order.SellerID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Widget", order.Items[0].Name)
	assert.Equal(t, 5.0, order.Items[0].Price)

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 6, after.Stock)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 5, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 10},
		},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Widget")

	// No order row, and the stock is untouched.
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 5, after.Stock)
}

// A failure on a later line item must roll back decrements applied for
// earlier items in the same order.
func TestPlaceOrderPartialFailureRollsBack(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	plenty := createProduct(t, db, "Plenty", 100, 1.0)
	scarce := createProduct(t, db, "Scarce", 1, 1.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items": []map[string]interface{}{
			{"product_id": plenty.ID, "quantity": 10},
			{"product_id": scarce.ID, "quantity": 5},
		},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Scarce")

	var after models.Product
	require.NoError(t, db.First(&after, plenty.ID).Error)
	assert.Equal(t, 100, after.Stock)
}

func TestPlaceOrderForeignClient(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	product := createProduct(t, db, "Widget", 10, 5.0)
	foreign := createClient(t, db, "other@acme.com", 9999)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": foreign.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": 424242,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Revising an order with new items reserves stock again without returning
// the previous reservation. Inherited behavior, kept deliberately.
func TestReviseOrderDecrementsAgain(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 10, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	w = doJSON(router, "PUT", fmt.Sprintf("/orders/%d", order.ID), token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 2}},
		"status":    "Completed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var revised models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &revised))
	assert.Equal(t, 10.0, revised.Total)
	assert.Equal(t, models.StatusCompleted, revised.Status)
	require.Len(t, revised.Items, 1)
	assert.Equal(t, 2, revised.Items[0].Quantity)

	// 10 - 4 - 2: the original four are not given back.
	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 4, after.Stock)
}

func TestReviseOrderKeepsItemsWhenOmitted(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 10, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	// Status-only revision: stock and items stay as they were.
	w = doJSON(router, "PUT", fmt.Sprintf("/orders/%d", order.ID), token, map[string]interface{}{
		"client_id": client.ID,
		"status":    "Completed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var revised models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &revised))
	assert.Equal(t, models.StatusCompleted, revised.Status)
	assert.Equal(t, 20.0, revised.Total)

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 6, after.Stock)
}

func TestCancelOrderDoesNotRestoreStock(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")
	intruder := registerAndLogin(t, router, "intruder@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	product := createProduct(t, db, "Widget", 10, 5.0)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	w := doJSON(router, "POST", "/orders", token, map[string]interface{}{
		"client_id": client.ID,
		"items":     []map[string]interface{}{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))

	path := fmt.Sprintf("/orders/%d", order.ID)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "DELETE", path, intruder, nil).Code)
	require.Equal(t, http.StatusOK, doJSON(router, "DELETE", path, token, nil).Code)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	// Deliberately not restored.
	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 6, after.Stock)
}

func TestListOrdersByStatus(t *testing.T) {
	router, db := getTestRouter(t)
	token := registerAndLogin(t, router, "seller@example.com")

	var seller models.User
	require.NoError(t, db.Where("email = ?", "seller@example.com").First(&seller).Error)
	client := createClient(t, db, "ada@acme.com", seller.ID)

	orders := []models.Order{
		{Total: 10, ClientID: client.ID, SellerID: seller.ID, Status: models.StatusPending},
		{Total: 20, ClientID: client.ID, SellerID: seller.ID, Status: models.StatusCompleted},
		{Total: 30, ClientID: client.ID, SellerID: seller.ID, Status: models.StatusCompleted},
	}
	for i := range orders {
		require.NoError(t, db.Create(&orders[i]).Error)
	}

	w := doJSON(router, "GET", "/orders/mine/status/Completed", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var completed []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Len(t, completed, 2)

	w = doJSON(router, "GET", "/orders/mine/status/Shipped", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
