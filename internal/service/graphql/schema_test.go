package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/service/crm"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/storage/memory"
)

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newTestHandler(t *testing.T) (*Handler, *crm.Service) {
	t.Helper()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(customers)

	svc := crm.NewService(customers, products, orders)

	schema, err := NewSchema(svc)
	require.NoError(t, err)

	return NewHandler(schema), svc
}

func doGraphQL(t *testing.T, handler *Handler, query string, variables map[string]interface{}) gqlResponse {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_Hello(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `{ hello }`, nil)

	require.Empty(t, resp.Errors)
	require.Equal(t, HelloMessage, resp.Data["hello"])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_CreateCustomer(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createCustomer(input: {name: "Alice", email: "alice@example.com", phone: "+1234567890"}) {
				customer { name email phone }
				message
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	payload := resp.Data["createCustomer"].(map[string]interface{})
	require.Equal(t, "Customer created successfully.", payload["message"])

	customer := payload["customer"].(map[string]interface{})
	require.Equal(t, "Alice", customer["name"])
	require.Equal(t, "alice@example.com", customer["email"])
	require.Equal(t, "+1234567890", customer["phone"])
}

func TestHandler_CreateCustomer_DuplicateEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	mutation := `
		mutation {
			createCustomer(input: {name: "Alice", email: "alice@example.com"}) {
				customer { id }
			}
		}
	`
	first := doGraphQL(t, handler, mutation, nil)
	require.Empty(t, first.Errors)

	second := doGraphQL(t, handler, mutation, nil)
	require.Len(t, second.Errors, 1)
	require.Equal(t, "Email already exists", second.Errors[0].Message)
	require.Equal(t, "ConflictError", second.Errors[0].Extensions["code"])
}

func TestHandler_CreateCustomer_ValidationFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createCustomer(input: {name: "", email: "not-an-email"}) {
				customer { id }
			}
		}
	`, nil)

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "ValidationError", resp.Errors[0].Extensions["code"])

	fields := resp.Errors[0].Extensions["fields"].([]interface{})
	require.ElementsMatch(t, []interface{}{"name", "email"}, fields)
}

func TestHandler_BulkCreateCustomers_PartialFailure(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			bulkCreateCustomers(input: [
				{name: "Alice", email: "alice@example.com"},
				{name: "", email: "broken"},
				{name: "Bob", email: "bob@example.com"}
			]) {
				customers { name }
				errors
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	payload := resp.Data["bulkCreateCustomers"].(map[string]interface{})

	customers := payload["customers"].([]interface{})
	require.Len(t, customers, 2)

	errs := payload["errors"].([]interface{})
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Entry 2: ")
}

func TestHandler_CreateProduct_RoundsPrice(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createProduct(input: {name: "Widget", price: "19.995", stock: 3}) {
				product { name price stock }
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	product := resp.Data["createProduct"].(map[string]interface{})["product"].(map[string]interface{})
	require.Equal(t, "Widget", product["name"])
	require.Equal(t, "20.00", product["price"])
	require.Equal(t, float64(3), product["stock"])
}

func TestHandler_CreateProduct_NumericLiteralPrice(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createProduct(input: {name: "Gadget", price: 15.5}) {
				product { price stock }
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	product := resp.Data["createProduct"].(map[string]interface{})["product"].(map[string]interface{})
	require.Equal(t, "15.50", product["price"])
	require.Equal(t, float64(0), product["stock"])
}

func TestHandler_CreateProduct_NonNumericPrice(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createProduct(input: {name: "Widget", price: "abc"}) {
				product { id }
			}
		}
	`, nil)

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "Price must be a number or a numeric string.", resp.Errors[0].Message)
	require.Equal(t, "TypeMismatch", resp.Errors[0].Extensions["code"])
}

func TestHandler_CreateOrder(t *testing.T) {
	handler, svc := newTestHandler(t)

	ctx := context.Background()
	customer, _, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	first, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Widget", Price: "10.00"})
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Gadget", Price: "15.50"})
	require.NoError(t, err)

	resp := doGraphQL(t, handler, `
		mutation CreateOrder($input: OrderInput!) {
			createOrder(input: $input) {
				order {
					totalAmount
					customer { name }
					products { name }
				}
			}
		}
	`, map[string]interface{}{
		"input": map[string]interface{}{
			"customerId": customer.ID,
			"productIds": []interface{}{first.ID, second.ID},
		},
	})

	require.Empty(t, resp.Errors)
	order := resp.Data["createOrder"].(map[string]interface{})["order"].(map[string]interface{})
	require.Equal(t, "25.50", order["totalAmount"])
	require.Equal(t, "Alice", order["customer"].(map[string]interface{})["name"])

	products := order["products"].([]interface{})
	require.Len(t, products, 2)
	require.Equal(t, "Widget", products[0].(map[string]interface{})["name"])
	require.Equal(t, "Gadget", products[1].(map[string]interface{})["name"])
}

func TestHandler_CreateOrder_InvalidCustomer(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `
		mutation {
			createOrder(input: {customerId: "missing", productIds: ["p1"]}) {
				order { id }
			}
		}
	`, nil)

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "Invalid customer ID", resp.Errors[0].Message)
	require.Equal(t, "NotFoundError", resp.Errors[0].Extensions["code"])
}

func TestHandler_CreateOrder_InvalidProduct(t *testing.T) {
	handler, svc := newTestHandler(t)

	customer, _, err := svc.CreateCustomer(context.Background(), crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	resp := doGraphQL(t, handler, `
		mutation CreateOrder($input: OrderInput!) {
			createOrder(input: $input) { order { id } }
		}
	`, map[string]interface{}{
		"input": map[string]interface{}{
			"customerId": customer.ID,
			"productIds": []interface{}{"bogus"},
		},
	})

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "Invalid product ID: bogus", resp.Errors[0].Message)
	require.Equal(t, "NotFoundError", resp.Errors[0].Extensions["code"])
}

func TestHandler_CustomersQuery_FilterAndSort(t *testing.T) {
	handler, svc := newTestHandler(t)

	ctx := context.Background()
	for _, c := range []crm.CustomerInput{
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@shop.test"},
	} {
		_, _, err := svc.CreateCustomer(ctx, c)
		require.NoError(t, err)
	}

	resp := doGraphQL(t, handler, `
		query {
			customers(emailContains: "example.com", orderBy: "-name") {
				name
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	customers := resp.Data["customers"].([]interface{})
	require.Len(t, customers, 2)
	require.Equal(t, "Carol", customers[0].(map[string]interface{})["name"])
	require.Equal(t, "Alice", customers[1].(map[string]interface{})["name"])
}

func TestHandler_ProductsQuery_PriceRange(t *testing.T) {
	handler, svc := newTestHandler(t)

	ctx := context.Background()
	for _, p := range []crm.ProductInput{
		{Name: "Cheap", Price: "5.00"},
		{Name: "Mid", Price: "25.00"},
		{Name: "Expensive", Price: "100.00"},
	} {
		_, err := svc.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	resp := doGraphQL(t, handler, `
		query {
			products(priceGte: "10", priceLte: "50", orderBy: "price") {
				name price
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	products := resp.Data["products"].([]interface{})
	require.Len(t, products, 1)
	require.Equal(t, "Mid", products[0].(map[string]interface{})["name"])
}

func TestHandler_OrdersQuery_CustomerNameFilter(t *testing.T) {
	handler, svc := newTestHandler(t)

	ctx := context.Background()
	alice, _, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, _, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Widget", Price: "10.00"})
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, crm.OrderInput{CustomerID: alice.ID, ProductIDs: []string{product.ID}})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, crm.OrderInput{CustomerID: bob.ID, ProductIDs: []string{product.ID}})
	require.NoError(t, err)

	resp := doGraphQL(t, handler, `
		query {
			orders(customerNameContains: "ali") {
				customer { name }
				totalAmount
			}
		}
	`, nil)

	require.Empty(t, resp.Errors)
	orders := resp.Data["orders"].([]interface{})
	require.Len(t, orders, 1)
	require.Equal(t, "Alice", orders[0].(map[string]interface{})["customer"].(map[string]interface{})["name"])
}

func TestHandler_SingleEntityQueries(t *testing.T) {
	handler, svc := newTestHandler(t)

	ctx := context.Background()
	customer, _, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	product, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Widget", Price: "12.50"})
	require.NoError(t, err)
	order, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: customer.ID, ProductIDs: []string{product.ID}})
	require.NoError(t, err)

	resp := doGraphQL(t, handler, `
		query ($customerId: ID!, $productId: ID!, $orderId: ID!) {
			customer(id: $customerId) { name }
			product(id: $productId) { price }
			order(id: $orderId) { totalAmount customer { email } }
		}
	`, map[string]interface{}{
		"customerId": customer.ID,
		"productId":  product.ID,
		"orderId":    order.ID,
	})

	require.Empty(t, resp.Errors)
	require.Equal(t, "Alice", resp.Data["customer"].(map[string]interface{})["name"])
	require.Equal(t, "12.50", resp.Data["product"].(map[string]interface{})["price"])
	orderData := resp.Data["order"].(map[string]interface{})
	require.Equal(t, "12.50", orderData["totalAmount"])
	require.Equal(t, "alice@example.com", orderData["customer"].(map[string]interface{})["email"])
}

func TestHandler_SingleEntityQuery_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doGraphQL(t, handler, `{ customer(id: "missing") { name } }`, nil)

	require.NotEmpty(t, resp.Errors)
	require.Equal(t, codeNotFound, resp.Errors[0].Extensions["code"])
}
