package quote

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/noah-isme/wealth-tithe/internal/common"
	"github.com/noah-isme/wealth-tithe/internal/donate"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
	"github.com/noah-isme/wealth-tithe/internal/wealth"
)

// Handler exposes the calculator over HTTP.
type Handler struct {
	Svc      *Service
	validate *validator.Validate
}

// NewHandler wires a handler around svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Routes mounts the calculator endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/quotes", h.Quote)
	r.Get("/defaults", h.Defaults)
	r.Get("/land-presets", h.LandPresets)
	r.Get("/destinations", h.Destinations)
	r.Get("/destinations/{tag}/go", h.GoToDestination)
}

type assetsPayload struct {
	PropertyValue       *float64 `json:"propertyValue"`
	SavingsCash         *float64 `json:"savingsCash"`
	InvestmentsPensions *float64 `json:"investmentsPensions"`
	BusinessEquity      *float64 `json:"businessEquity"`
	OtherValuables      *float64 `json:"otherValuables"`
	Debts               *float64 `json:"debts"`
}

// quoteRequest overlays the defaults: absent fields keep their default value.
type quoteRequest struct {
	Assets          assetsPayload `json:"assets"`
	AnnualIncome    *incomeField  `json:"annualIncome"`
	Threshold       *float64      `json:"threshold"`
	Band1Cap        *float64      `json:"band1Cap"`
	Band2Cap        *float64      `json:"band2Cap"`
	Rate1           *float64      `json:"rate1"`
	Rate2           *float64      `json:"rate2"`
	Rate3           *float64      `json:"rate3"`
	LandPreset      *string       `json:"landPreset" validate:"omitempty,oneof=prime balanced rural custom"`
	CustomLandShare *float64      `json:"customLandShare"`
	LVTAllowance    *float64      `json:"lvtAllowance"`
	LVTRate         *float64      `json:"lvtRate"`
	DonationSplit   *float64      `json:"donationSplit"`
	GiftAid         *bool         `json:"giftAid"`
	TaxBand         *float64      `json:"taxBand"`
	Calibration     *float64      `json:"calibration"`
	Destination     string        `json:"destination" validate:"max=32"`
}

// incomeField accepts either a JSON number or free text such as "£120,000".
type incomeField float64

func (f *incomeField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*f = incomeField(wealth.ParseIncome(raw))
		return nil
	}
	*f = incomeField(wealth.ParseIncome(string(data)))
	return nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// apply overlays the request onto base.
func (req quoteRequest) apply(base tithe.Inputs) tithe.Inputs {
	in := base
	setIf(&in.Assets.PropertyValue, req.Assets.PropertyValue)
	setIf(&in.Assets.SavingsCash, req.Assets.SavingsCash)
	setIf(&in.Assets.InvestmentsPensions, req.Assets.InvestmentsPensions)
	setIf(&in.Assets.BusinessEquity, req.Assets.BusinessEquity)
	setIf(&in.Assets.OtherValuables, req.Assets.OtherValuables)
	setIf(&in.Assets.Debts, req.Assets.Debts)
	if req.AnnualIncome != nil {
		in.AnnualIncome = float64(*req.AnnualIncome)
	}
	setIf(&in.Threshold, req.Threshold)
	if req.Band1Cap != nil {
		in.Schedule.SetCap1(*req.Band1Cap)
	}
	if req.Band2Cap != nil {
		in.Schedule.SetCap2(*req.Band2Cap)
	}
	setIf(&in.Schedule.Rate1, req.Rate1)
	setIf(&in.Schedule.Rate2, req.Rate2)
	setIf(&in.Schedule.Rate3, req.Rate3)
	if req.LandPreset != nil {
		if p, ok := tithe.ParseLandPreset(*req.LandPreset); ok {
			in.Land.SelectPreset(p)
		}
	}
	setIf(&in.Land.CustomShare, req.CustomLandShare)
	setIf(&in.Land.Allowance, req.LVTAllowance)
	setIf(&in.Land.Rate, req.LVTRate)
	setIf(&in.Donation.SplitPercent, req.DonationSplit)
	if req.GiftAid != nil {
		in.Donation.GiftAid = *req.GiftAid
	}
	setIf(&in.Donation.TaxBand, req.TaxBand)
	setIf(&in.Calibration, req.Calibration)
	return in
}

type quoteData struct {
	Inputs      tithe.Inputs    `json:"inputs"`
	Breakdown   tithe.Breakdown `json:"breakdown"`
	Display     Display         `json:"display"`
	Destination donate.Info     `json:"destination"`
}

type quoteMeta struct {
	CalculationID string    `json:"calculationId"`
	Source        string    `json:"source"`
	ComputedAt    time.Time `json:"computedAt"`
	DurationMS    float64   `json:"durationMs"`
}

// Quote evaluates a calculator state posted as JSON.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req quoteRequest
	// an empty body quotes the defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.WriteAppError(w, common.BadRequest("BAD_REQUEST", "invalid payload", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		appErr := common.BadRequest("VALIDATION_FAILED", "invalid quote request", err)
		appErr.Details = validationDetails(err)
		common.WriteAppError(w, appErr)
		return
	}

	in := req.apply(h.Svc.Defaults())
	res := h.Svc.Quote(r.Context(), in)
	dest := donate.Default
	if req.Destination != "" {
		dest = donate.Parse(req.Destination)
	}

	common.Data(w, http.StatusOK, quoteData{
		Inputs:      in,
		Breakdown:   res.Breakdown,
		Display:     Render(res.Breakdown),
		Destination: donate.Info{Tag: dest, Name: dest.Name(), URL: dest.URL()},
	}, quoteMeta{
		CalculationID: res.CalculationID,
		Source:        res.Source,
		ComputedAt:    res.StartedAt.UTC(),
		DurationMS:    float64(res.Duration.Microseconds()) / 1000,
	})
}

// Defaults returns the calculator's starting inputs.
func (h *Handler) Defaults(w http.ResponseWriter, r *http.Request) {
	defaults := tithe.DefaultInputs()
	if h.Svc != nil {
		defaults = h.Svc.Defaults()
	}
	common.Data(w, http.StatusOK, map[string]any{
		"inputs":      defaults,
		"destination": donate.Default,
	}, nil)
}

// LandPresets lists the land share presets.
func (h *Handler) LandPresets(w http.ResponseWriter, r *http.Request) {
	common.Data(w, http.StatusOK, tithe.Presets(), nil)
}

// Destinations lists the donation destinations.
func (h *Handler) Destinations(w http.ResponseWriter, r *http.Request) {
	common.Data(w, http.StatusOK, donate.All(), nil)
}

// GoToDestination redirects to the destination's donation page. Unknown tags go to the government guide.
func (h *Handler) GoToDestination(w http.ResponseWriter, r *http.Request) {
	dest := donate.Parse(chi.URLParam(r, "tag"))
	http.Redirect(w, r, dest.URL(), http.StatusFound)
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[fe.Field()] = msg
	}
	return out
}
