package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/footprint"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type SurveyRequest struct {
	BodyType            string `form:"body_type" binding:"required"`
	Sex                 string `form:"sex" binding:"required"`
	Diet                string `form:"diet" binding:"required"`
	Shower              string `form:"shower" binding:"required"`
	HeatingEnergySource string `form:"heating_energy_source" binding:"required"`
	Transport           string `form:"transport" binding:"required"`
	VehicleType         string `form:"vehicle_type" binding:"required"`
	SocialActivity      string `form:"social_activity" binding:"required"`
	GroceryBill         string `form:"grocery_bill" binding:"required"`
	AirTravel           string `form:"air_travel" binding:"required"`
	VehicleDistance     string `form:"vehicle_distance" binding:"required"`
	WasteBagSize        string `form:"waste_bag_size" binding:"required"`
	WasteBagCount       string `form:"waste_bag_count" binding:"required"`
	TVPCHours           string `form:"tv_pc_hours" binding:"required"`
	NewClothes          string `form:"new_clothes" binding:"required"`
	InternetHours       string `form:"internet_hours" binding:"required"`
	EnergyEfficiency    string `form:"energy_efficiency" binding:"required"`
}

// NumericField describes one free-number question of the survey form.
type NumericField struct {
	Key   string
	Label string
	Step  string
}

var NumericFields = []NumericField{
	{Key: "grocery_bill", Label: footprint.ColGroceryBill, Step: "0.01"},
	{Key: "vehicle_distance", Label: "Vehicle Monthly Distance (KM)", Step: "0.1"},
	{Key: "waste_bag_count", Label: footprint.ColWasteBagCount, Step: "1"},
	{Key: "tv_pc_hours", Label: "How Long TV/PC Daily (Hours)", Step: "0.1"},
	{Key: "new_clothes", Label: footprint.ColNewClothes, Step: "1"},
	{Key: "internet_hours", Label: "How Long Internet Daily (Hours)", Step: "0.1"},
}

// Survey converts the submitted strings. Numbers that do not parse are
// reported against the field's column name.
func (r SurveyRequest) Survey() (footprint.Survey, error) {
	s := footprint.Survey{
		BodyType:            strings.TrimSpace(r.BodyType),
		Sex:                 strings.TrimSpace(r.Sex),
		Diet:                strings.TrimSpace(r.Diet),
		Shower:              strings.TrimSpace(r.Shower),
		HeatingEnergySource: strings.TrimSpace(r.HeatingEnergySource),
		Transport:           strings.TrimSpace(r.Transport),
		VehicleType:         strings.TrimSpace(r.VehicleType),
		SocialActivity:      strings.TrimSpace(r.SocialActivity),
		AirTravel:           strings.TrimSpace(r.AirTravel),
		WasteBagSize:        strings.TrimSpace(r.WasteBagSize),
		EnergyEfficiency:    strings.TrimSpace(r.EnergyEfficiency),
	}

	type numericAnswer struct {
		column string
		raw    string
		dst    *float64
	}

	numbers := []numericAnswer{
		{footprint.ColGroceryBill, r.GroceryBill, &s.GroceryBill},
		{footprint.ColVehicleDistance, r.VehicleDistance, &s.VehicleDistance},
		{footprint.ColWasteBagCount, r.WasteBagCount, &s.WasteBagCount},
		{footprint.ColTVPCHours, r.TVPCHours, &s.TVPCHours},
		{footprint.ColNewClothes, r.NewClothes, &s.NewClothes},
		{footprint.ColInternetHours, r.InternetHours, &s.InternetHours},
	}

	for _, n := range numbers {
		value, err := strconv.ParseFloat(strings.TrimSpace(n.raw), 64)
		if err != nil {
			return footprint.Survey{}, &footprint.ValidationError{Field: n.column, Value: n.raw, Reason: "must be a number"}
		}
		*n.dst = value
	}

	return s, nil
}

func (h *Handler) ShowSurvey(ctx *gin.Context) {
	h.renderSurvey(ctx, http.StatusOK, nil)
}

func (h *Handler) renderSurvey(ctx *gin.Context, status int, values map[string]string) {
	h.render(ctx, status, "form.html", gin.H{
		"Questions":     footprint.Questions,
		"NumericFields": NumericFields,
		"Values":        values,
	})
}

// SubmitSurvey predicts the emission for the submitted answers and records
// it for the logged-in user before redirecting to the result page.
func (h *Handler) SubmitSurvey(ctx *gin.Context) {
	session := utils.GetSession(ctx)

	var body SurveyRequest

	if err := ctx.ShouldBind(&body); err != nil {
		session.AddFlash("Please answer every question.")
		h.renderSurvey(ctx, http.StatusBadRequest, submittedValues(ctx))
		return
	}

	survey, err := body.Survey()

	if err == nil {
		err = survey.Validate()
	}

	if err != nil {
		session.AddFlash(err.Error())
		h.renderSurvey(ctx, http.StatusBadRequest, submittedValues(ctx))
		return
	}

	emission, err := h.predictor.Predict(ctx.Request.Context(), survey)

	var validationErr *footprint.ValidationError

	if errors.As(err, &validationErr) {
		session.AddFlash(validationErr.Error())
		h.renderSurvey(ctx, http.StatusBadRequest, submittedValues(ctx))
		return
	}

	if err != nil || math.IsNaN(emission) || math.IsInf(emission, 0) {
		logging.Log.WithError(err).WithField("request_id", utils.GetRequestID(ctx)).Error("prediction failed")
		session.AddFlash(types.FlashPredictionFailed)
		h.renderSurvey(ctx, http.StatusInternalServerError, submittedValues(ctx))
		return
	}

	h.recordEmission(ctx, survey, emission)

	h.redirect(ctx, "/result?emission="+url.QueryEscape(strconv.FormatFloat(emission, 'f', -1, 64)))
}

// recordEmission persists the prediction when a session user exists. Any
// other outcome only leaves a flash for the result page.
func (h *Handler) recordEmission(ctx *gin.Context, survey footprint.Survey, emission float64) {
	session := utils.GetSession(ctx)
	log := logging.Log.WithFields(logrus.Fields{
		"request_id": utils.GetRequestID(ctx),
		"emission":   emission,
	})

	if !session.Authenticated() {
		log.Warn("no user in session, prediction not recorded")
		session.AddFlash(types.FlashLoginToSave)
		return
	}

	answers, err := json.Marshal(survey)
	if err != nil {
		log.WithError(err).Error("failed to encode survey answers")
		answers = nil
	}

	_, err = h.store.RecordEmission(ctx.Request.Context(), session.UserID, emission, datatypes.JSON(answers))

	switch {
	case errors.Is(err, store.ErrUserNotFound):
		log.WithField("user_id", session.UserID).Warn("session user does not exist, prediction not recorded")
		session.AddFlash(types.FlashUserNotFound)
	case err != nil:
		log.WithError(err).Error("failed to record emission")
		session.AddFlash(types.FlashSomethingWrong)
	default:
		h.hub.BroadcastRefresh()
	}
}

func submittedValues(ctx *gin.Context) map[string]string {
	values := map[string]string{}

	if err := ctx.Request.ParseForm(); err != nil {
		return values
	}

	for key := range ctx.Request.PostForm {
		values[key] = ctx.Request.PostForm.Get(key)
	}

	return values
}

func (h *Handler) Result(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "result.html", gin.H{
		"Emission": utils.QueryFloat(ctx, "emission", 0),
	})
}
