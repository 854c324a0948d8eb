package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/ledger"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	// Quotes.
	v1.Post("/quotes", func(c *fiber.Ctx) error {
		var req quoteRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if !domain.TriggerType(req.TriggerType).Valid() {
			return domain.ErrInvalidTriggerType
		}

		premium := deps.Pricing.CalculatePremium(req.CoverageAmount, req.DurationSeconds, domain.TriggerType(req.TriggerType))
		return c.JSON(fiber.Map{"premium": premium})
	})

	// Policies.
	v1.Post("/policies", func(c *fiber.Ctx) error {
		var req createPolicyRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		p, err := deps.Ledger.CreatePolicy(c.Context(), ledger.CreatePolicyInput{
			Holder:           domain.Address(req.Holder),
			Location:         domain.LocationFromDegrees(req.Latitude, req.Longitude),
			TriggerType:      domain.TriggerType(req.TriggerType),
			TriggerThreshold: req.TriggerThreshold,
			CoverageAmount:   req.CoverageAmount,
			Duration:         time.Duration(req.DurationSeconds) * time.Second,
			CropType:         req.CropType,
			FarmSize:         req.FarmSize,
			PaidAmount:       req.PaidAmount,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	v1.Get("/policies/count", func(c *fiber.Ctx) error {
		n, err := deps.Ledger.CountPolicies(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": n})
	})

	v1.Get("/policies/:id", func(c *fiber.Ctx) error {
		p, err := deps.Ledger.GetPolicy(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	v1.Get("/policies", func(c *fiber.Ctx) error {
		holder := c.Query("holder")
		if holder == "" {
			return fiber.NewError(fiber.StatusBadRequest, "holder query parameter is required")
		}
		list, err := deps.Ledger.PoliciesByHolder(c.Context(), domain.Address(holder))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"policies": list})
	})

	v1.Post("/policies/:id/cancel", func(c *fiber.Ctx) error {
		var req callerRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		refund, err := deps.Ledger.CancelPolicy(c.Context(), c.Params("id"), domain.Address(req.Caller))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"refund": refund})
	})

	v1.Get("/policies/:id/claims", func(c *fiber.Ctx) error {
		list, err := deps.Claims.ClaimsByPolicy(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"claims": list})
	})

	// Claims.
	v1.Post("/claims", func(c *fiber.Ctx) error {
		var req initiateClaimRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		claim, err := deps.Claims.InitiateClaim(c.Context(), req.PolicyID, domain.Address(req.Caller))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(claim)
	})

	v1.Get("/claims/:id", func(c *fiber.Ctx) error {
		claim, err := deps.Claims.GetClaim(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(claim)
	})

	v1.Post("/claims/:id/process", func(c *fiber.Ctx) error {
		payout, err := deps.Claims.ProcessClaim(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"payout": payout})
	})

	// Risk scoring.
	v1.Get("/risk-score", func(c *fiber.Ctx) error {
		var q riskScoreQuery
		if err := parseRiskScoreQuery(c, &q); err != nil {
			return err
		}
		loc := domain.LocationFromDegrees(q.Latitude, q.Longitude)
		score := deps.History.RiskScore(loc.ID(), domain.TriggerType(q.TriggerType), q.Threshold)
		return c.JSON(fiber.Map{
			"location_id": loc.ID(),
			"score":       score,
		})
	})

	// Readings.
	v1.Get("/locations/:id/readings", func(c *fiber.Ctx) error {
		locationID := c.Params("id")
		latest, ok := deps.History.Latest(locationID)
		resp := fiber.Map{
			"averages": deps.History.Averages(locationID),
			"count":    deps.History.Count(locationID),
		}
		if ok {
			resp["latest"] = latest
		}
		return c.JSON(resp)
	})

	// Oracle requests.
	v1.Post("/oracle/requests", func(c *fiber.Ctx) error {
		var req openRequestRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		loc := domain.LocationFromDegrees(req.Latitude, req.Longitude)
		id := deps.Broker.RequestReading(c.Context(), loc, time.Now().UTC())
		request, err := deps.Broker.Get(id)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(request)
	})

	v1.Get("/oracle/requests/:id", func(c *fiber.Ctx) error {
		request, err := deps.Broker.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(request)
	})

	v1.Post("/oracle/requests/:id/fulfill", func(c *fiber.Ctx) error {
		var req fulfillRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		// Copy the route param: Fulfill retains the ID as a map key, and
		// fiber's zero-copy param strings alias a reused request buffer.
		err := deps.Broker.Fulfill(c.Context(), utils.CopyString(c.Params("id")),
			req.Temperature, req.Rainfall, req.Humidity, req.WindSpeed,
			domain.Address(req.Submitter))
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/oracle/pending", func(c *fiber.Ctx) error {
		pending := deps.Broker.Pending()
		return c.JSON(fiber.Map{"requests": pending})
	})

	// Refundable overpayments.
	v1.Get("/refunds", func(c *fiber.Ctx) error {
		holder := c.Query("holder")
		if holder == "" {
			return fiber.NewError(fiber.StatusBadRequest, "holder query parameter is required")
		}
		balance, err := deps.Ledger.RefundBalance(c.Context(), domain.Address(holder))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"balance": balance})
	})

	v1.Post("/refunds/withdraw", func(c *fiber.Ctx) error {
		var req holderRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		amount, err := deps.Ledger.WithdrawRefund(c.Context(), domain.Address(req.Holder))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"amount": amount})
	})

	// Treasury.
	v1.Get("/treasury", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"balance":    deps.Treasury.Balance(),
			"total_paid": deps.Treasury.TotalPaid(),
		})
	})

	v1.Post("/treasury/fund", func(c *fiber.Ctx) error {
		var req fundRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Treasury.Fund(c.Context(), domain.Address(req.From), req.Amount); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"balance": deps.Treasury.Balance()})
	})

	v1.Post("/treasury/withdraw", func(c *fiber.Ctx) error {
		var req withdrawRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Treasury.Withdraw(c.Context(), domain.Address(req.Caller), req.Amount); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"balance": deps.Treasury.Balance()})
	})

	// Admin.
	admin := v1.Group("/admin")

	admin.Post("/pricing/base-rate", func(c *fiber.Ctx) error {
		var req adminAmountRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Pricing.SetBaseRate(domain.Address(req.Caller), req.Amount); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/pricing/minimum-premium", func(c *fiber.Ctx) error {
		var req adminAmountRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Pricing.SetMinimumPremium(domain.Address(req.Caller), req.Amount); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/bounds/coverage", func(c *fiber.Ctx) error {
		var req adminRangeRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Ledger.SetCoverageBounds(domain.Address(req.Caller), req.Min, req.Max); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/bounds/duration", func(c *fiber.Ctx) error {
		var req adminRangeRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		err := deps.Ledger.SetDurationBounds(domain.Address(req.Caller),
			time.Duration(req.Min)*time.Second, time.Duration(req.Max)*time.Second)
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/providers/authorize", func(c *fiber.Ctx) error {
		var req providerRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Broker.Authorize(domain.Address(req.Caller), domain.Address(req.Provider)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/providers/revoke", func(c *fiber.Ctx) error {
		var req providerRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := deps.Broker.Revoke(domain.Address(req.Caller), domain.Address(req.Provider)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

type quoteRequest struct {
	CoverageAmount  int64  `json:"coverage_amount" validate:"required,gt=0"`
	DurationSeconds int64  `json:"duration_seconds" validate:"required,gt=0"`
	TriggerType     string `json:"trigger_type" validate:"required"`
}

type createPolicyRequest struct {
	Holder           string  `json:"holder" validate:"required"`
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	TriggerType      string  `json:"trigger_type" validate:"required"`
	TriggerThreshold int64   `json:"trigger_threshold"`
	CoverageAmount   int64   `json:"coverage_amount" validate:"required,gt=0"`
	DurationSeconds  int64   `json:"duration_seconds" validate:"required,gt=0"`
	CropType         string  `json:"crop_type"`
	FarmSize         int64   `json:"farm_size"`
	PaidAmount       int64   `json:"paid_amount" validate:"required,gt=0"`
}

type callerRequest struct {
	Caller string `json:"caller" validate:"required"`
}

type holderRequest struct {
	Holder string `json:"holder" validate:"required"`
}

type initiateClaimRequest struct {
	PolicyID string `json:"policy_id" validate:"required"`
	Caller   string `json:"caller" validate:"required"`
}

type openRequestRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type fulfillRequest struct {
	Temperature int64  `json:"temperature"`
	Rainfall    int64  `json:"rainfall"`
	Humidity    int64  `json:"humidity"`
	WindSpeed   int64  `json:"wind_speed"`
	Submitter   string `json:"submitter" validate:"required"`
}

type fundRequest struct {
	From   string `json:"from" validate:"required"`
	Amount int64  `json:"amount" validate:"required"`
}

type withdrawRequest struct {
	Caller string `json:"caller" validate:"required"`
	Amount int64  `json:"amount" validate:"required"`
}

type adminAmountRequest struct {
	Caller string `json:"caller" validate:"required"`
	Amount int64  `json:"amount" validate:"required"`
}

type adminRangeRequest struct {
	Caller string `json:"caller" validate:"required"`
	Min    int64  `json:"min" validate:"required"`
	Max    int64  `json:"max" validate:"required"`
}

type providerRequest struct {
	Caller   string `json:"caller" validate:"required"`
	Provider string `json:"provider" validate:"required"`
}

type riskScoreQuery struct {
	Latitude    float64 `validate:"gte=-90,lte=90"`
	Longitude   float64 `validate:"gte=-180,lte=180"`
	TriggerType string  `validate:"required"`
	Threshold   int64
}

func parseRiskScoreQuery(c *fiber.Ctx, q *riskScoreQuery) error {
	q.Latitude = c.QueryFloat("lat")
	q.Longitude = c.QueryFloat("lon")
	q.TriggerType = c.Query("trigger_type")
	q.Threshold = int64(c.QueryInt("threshold"))

	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !domain.TriggerType(q.TriggerType).Valid() {
		return domain.ErrInvalidTriggerType
	}
	return nil
}
