package api

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"arrive/internal/service"
)

// GraphQLHandler serves the owner dashboard read API. Field names match
// the mobile client's queries exactly.
type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(reports *service.ReportService) (*GraphQLHandler, error) {
	listingStatType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ListingStat",
		Fields: graphql.Fields{
			"listingId":        &graphql.Field{Type: graphql.String},
			"listingName":      &graphql.Field{Type: graphql.String},
			"lifetimeEarnings": &graphql.Field{Type: graphql.Float},
		},
	})

	dashboardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OwnerDashboard",
		Fields: graphql.Fields{
			"totalEarningsAllTime": &graphql.Field{Type: graphql.Float},
			"spotsCurrentlyInUse":  &graphql.Field{Type: graphql.Int},
			"bookingsNotStarted":   &graphql.Field{Type: graphql.Int},
			"topActiveListings":    &graphql.Field{Type: graphql.NewList(listingStatType)},
		},
	})

	ownerBookingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OwnerBooking",
		Fields: graphql.Fields{
			"bookingId":         &graphql.Field{Type: graphql.String},
			"carModelName":      &graphql.Field{Type: graphql.String},
			"bookingStatus":     &graphql.Field{Type: graphql.String},
			"bookingTotalPrice": &graphql.Field{Type: graphql.Float},
		},
	})

	ownerIDArg := graphql.FieldConfigArgument{
		"ownerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ownerDashboard": &graphql.Field{
				Type: dashboardType,
				Args: ownerIDArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ownerID, _ := p.Args["ownerId"].(string)
					return reports.OwnerDashboard(p.Context, ownerID)
				},
			},
			"ownerBookings": &graphql.Field{
				Type: graphql.NewList(ownerBookingType),
				Args: ownerIDArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ownerID, _ := p.Args["ownerId"].(string)
					return reports.OwnerBookings(p.Context, ownerID)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return nil, err
	}
	return &GraphQLHandler{schema: schema}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})
	writeJSON(w, http.StatusOK, result)
}
