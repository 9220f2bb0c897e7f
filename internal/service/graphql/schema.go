package graphql

import (
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/service/crm"
)

// HelloMessage — ответ health-поля hello.
const HelloMessage = "Hello from CRM schema!"

// decimalType принимает число или числовую строку и отдаёт денежные значения
// строкой с двумя знаками после запятой. Мусорные строки проходят насквозь:
// их отбраковывает пайплайн мутации со своей ошибкой типа.
var decimalType = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "Fixed-point decimal transported as a string.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case decimal.Decimal:
			return v.StringFixed(2)
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			return v.StringFixed(2)
		case string:
			return v
		default:
			return fmt.Sprintf("%v", v)
		}
	},
	ParseValue: func(value interface{}) interface{} {
		switch v := value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		default:
			return nil
		}
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return v.Value
		case *ast.IntValue:
			return v.Value
		case *ast.FloatValue:
			return v.Value
		default:
			return nil
		}
	},
})

// NewSchema собирает исполняемую GraphQL-схему поверх CRM-сервиса.
func NewSchema(svc *crm.Service) (graphql.Schema, error) {
	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Customer).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Customer).Name, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Customer).Email, nil
				},
			},
			"phone": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Customer).Phone, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.DateTime),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Customer).CreatedAt, nil
				},
			},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Product).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Product).Name, nil
				},
			},
			"price": &graphql.Field{
				Type: graphql.NewNonNull(decimalType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Product).Price, nil
				},
			},
			"stock": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.Product).Stock), nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.DateTime),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Product).CreatedAt, nil
				},
			},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Order).ID, nil
				},
			},
			"customer": &graphql.Field{
				Type: graphql.NewNonNull(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					order := p.Source.(domain.Order)
					customer, err := svc.GetCustomer(p.Context, order.CustomerID)
					if err != nil {
						return nil, wrapError(err)
					}
					return customer, nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Order).Products, nil
				},
			},
			"totalAmount": &graphql.Field{
				Type: graphql.NewNonNull(decimalType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Order).TotalAmount, nil
				},
			},
			"orderDate": &graphql.Field{
				Type: graphql.NewNonNull(graphql.DateTime),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Order).OrderDate, nil
				},
			},
		},
	})

	customerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	productInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(decimalType)},
			"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})

	orderInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"productIds": &graphql.InputObjectFieldConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
			},
		},
	})

	createCustomerPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateCustomerPayload",
		Fields: graphql.Fields{
			"customer": &graphql.Field{Type: customerType},
			"message":  &graphql.Field{Type: graphql.String},
		},
	})

	bulkCreateCustomersPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "BulkCreateCustomersPayload",
		Fields: graphql.Fields{
			"customers": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(customerType))},
			"errors":    &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		},
	})

	createProductPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateProductPayload",
		Fields: graphql.Fields{
			"product": &graphql.Field{Type: productType},
		},
	})

	createOrderPayload := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateOrderPayload",
		Fields: graphql.Fields{
			"order": &graphql.Field{Type: orderType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return HelloMessage, nil
				},
			},
			"customer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					customer, err := svc.GetCustomer(p.Context, stringArg(p.Args, "id"))
					if err != nil {
						return nil, wrapError(err)
					}
					return customer, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, err := svc.GetProduct(p.Context, stringArg(p.Args, "id"))
					if err != nil {
						return nil, wrapError(err)
					}
					return product, nil
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					order, err := svc.GetOrder(p.Context, stringArg(p.Args, "id"))
					if err != nil {
						return nil, wrapError(err)
					}
					return order, nil
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerType))),
				Args: graphql.FieldConfigArgument{
					"nameContains":  &graphql.ArgumentConfig{Type: graphql.String},
					"emailContains": &graphql.ArgumentConfig{Type: graphql.String},
					"createdAtGte":  &graphql.ArgumentConfig{Type: graphql.DateTime},
					"createdAtLte":  &graphql.ArgumentConfig{Type: graphql.DateTime},
					"phonePattern":  &graphql.ArgumentConfig{Type: graphql.String},
					"orderBy":       &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := domain.CustomerFilter{
						NameContains:  stringArg(p.Args, "nameContains"),
						EmailContains: stringArg(p.Args, "emailContains"),
						CreatedAtGte:  timeArg(p.Args, "createdAtGte"),
						CreatedAtLte:  timeArg(p.Args, "createdAtLte"),
						PhonePrefix:   stringArg(p.Args, "phonePattern"),
						OrderBy:       stringArg(p.Args, "orderBy"),
					}
					customers, err := svc.ListCustomers(p.Context, filter)
					if err != nil {
						return nil, wrapError(err)
					}
					return customers, nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Args: graphql.FieldConfigArgument{
					"nameContains": &graphql.ArgumentConfig{Type: graphql.String},
					"priceGte":     &graphql.ArgumentConfig{Type: decimalType},
					"priceLte":     &graphql.ArgumentConfig{Type: decimalType},
					"stockGte":     &graphql.ArgumentConfig{Type: graphql.Int},
					"stockLte":     &graphql.ArgumentConfig{Type: graphql.Int},
					"orderBy":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					priceGte, err := decimalArg(p.Args, "priceGte")
					if err != nil {
						return nil, wrapError(err)
					}
					priceLte, err := decimalArg(p.Args, "priceLte")
					if err != nil {
						return nil, wrapError(err)
					}
					filter := domain.ProductFilter{
						NameContains: stringArg(p.Args, "nameContains"),
						PriceGte:     priceGte,
						PriceLte:     priceLte,
						StockGte:     int32Arg(p.Args, "stockGte"),
						StockLte:     int32Arg(p.Args, "stockLte"),
						OrderBy:      stringArg(p.Args, "orderBy"),
					}
					products, err := svc.ListProducts(p.Context, filter)
					if err != nil {
						return nil, wrapError(err)
					}
					return products, nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderType))),
				Args: graphql.FieldConfigArgument{
					"totalAmountGte":       &graphql.ArgumentConfig{Type: decimalType},
					"totalAmountLte":       &graphql.ArgumentConfig{Type: decimalType},
					"orderDateGte":         &graphql.ArgumentConfig{Type: graphql.DateTime},
					"orderDateLte":         &graphql.ArgumentConfig{Type: graphql.DateTime},
					"customerNameContains": &graphql.ArgumentConfig{Type: graphql.String},
					"productNameContains":  &graphql.ArgumentConfig{Type: graphql.String},
					"productId":            &graphql.ArgumentConfig{Type: graphql.ID},
					"orderBy":              &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					totalGte, err := decimalArg(p.Args, "totalAmountGte")
					if err != nil {
						return nil, wrapError(err)
					}
					totalLte, err := decimalArg(p.Args, "totalAmountLte")
					if err != nil {
						return nil, wrapError(err)
					}
					filter := domain.OrderFilter{
						TotalAmountGte:       totalGte,
						TotalAmountLte:       totalLte,
						OrderDateGte:         timeArg(p.Args, "orderDateGte"),
						OrderDateLte:         timeArg(p.Args, "orderDateLte"),
						CustomerNameContains: stringArg(p.Args, "customerNameContains"),
						ProductNameContains:  stringArg(p.Args, "productNameContains"),
						ProductID:            stringArg(p.Args, "productId"),
						OrderBy:              stringArg(p.Args, "orderBy"),
					}
					orders, err := svc.ListOrders(p.Context, filter)
					if err != nil {
						return nil, wrapError(err)
					}
					return orders, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: graphql.NewNonNull(createCustomerPayload),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, err := customerInputFromArgs(p.Args["input"])
					if err != nil {
						return nil, wrapError(err)
					}
					customer, message, err := svc.CreateCustomer(p.Context, input)
					if err != nil {
						return nil, wrapError(err)
					}
					return map[string]interface{}{
						"customer": customer,
						"message":  message,
					}, nil
				},
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: graphql.NewNonNull(bulkCreateCustomersPayload),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInput))),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rawList, _ := p.Args["input"].([]interface{})
					inputs := make([]crm.CustomerInput, 0, len(rawList))
					for _, raw := range rawList {
						input, err := customerInputFromArgs(raw)
						if err != nil {
							return nil, wrapError(err)
						}
						inputs = append(inputs, input)
					}
					result, err := svc.BulkCreateCustomers(p.Context, inputs)
					if err != nil {
						return nil, wrapError(err)
					}
					return map[string]interface{}{
						"customers": result.Customers,
						"errors":    result.Errors,
					}, nil
				},
			},
			"createProduct": &graphql.Field{
				Type: graphql.NewNonNull(createProductPayload),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["input"].(map[string]interface{})
					input := crm.ProductInput{
						Name:  stringArg(raw, "name"),
						Price: stringArg(raw, "price"),
						Stock: int32Arg(raw, "stock"),
					}
					product, err := svc.CreateProduct(p.Context, input)
					if err != nil {
						return nil, wrapError(err)
					}
					return map[string]interface{}{"product": product}, nil
				},
			},
			"createOrder": &graphql.Field{
				Type: graphql.NewNonNull(createOrderPayload),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["input"].(map[string]interface{})
					input := crm.OrderInput{
						CustomerID: stringArg(raw, "customerId"),
						ProductIDs: stringListArg(raw, "productIds"),
					}
					order, err := svc.CreateOrder(p.Context, input)
					if err != nil {
						return nil, wrapError(err)
					}
					return map[string]interface{}{"order": order}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func customerInputFromArgs(raw interface{}) (crm.CustomerInput, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return crm.CustomerInput{}, domain.NewValidationError("Customer input is required")
	}
	return crm.CustomerInput{
		Name:  stringArg(m, "name"),
		Email: stringArg(m, "email"),
		Phone: stringArg(m, "phone"),
	}, nil
}

func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func stringListArg(args map[string]interface{}, key string) []string {
	if args == nil {
		return nil
	}
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if v, ok := item.(string); ok {
			result = append(result, v)
		}
	}
	return result
}

func timeArg(args map[string]interface{}, key string) *time.Time {
	if v, ok := args[key].(time.Time); ok {
		return &v
	}
	return nil
}

func int32Arg(args map[string]interface{}, key string) *int32 {
	if v, ok := args[key].(int); ok {
		value := int32(v)
		return &value
	}
	return nil
}

func decimalArg(args map[string]interface{}, key string) (*decimal.Decimal, error) {
	raw, ok := args[key].(string)
	if !ok {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewTypeMismatchError(fmt.Sprintf("Argument %q must be a number or a numeric string.", key))
	}
	return &value, nil
}
