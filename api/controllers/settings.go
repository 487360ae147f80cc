package controllers

import (
	"net/http"
	"time"

	"github.com/boutique2v/commerce-backend/api/responses"
	"github.com/boutique2v/commerce-backend/api/validators"
	settingsvc "github.com/boutique2v/commerce-backend/internal/settings"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// StoreInfo is the public storefront identity block.
func StoreInfo(svc settingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, storeInfoResponse{
			StoreName:    setting.StoreName,
			StoreEmail:   setting.StoreEmail,
			StorePhone:   setting.StorePhone,
			StoreAddress: setting.StoreAddress,
			StoreCity:    setting.StoreCity,
			StoreCountry: setting.StoreCountry,
			Currency:     setting.Currency,
			AboutText:    setting.AboutText,
			FooterText:   setting.FooterText,
		})
	}
}

// AdminSettings returns the full settings row, tax config included.
func AdminSettings(svc settingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSettingResponse(setting))
	}
}

// AdminUpdateSettings patches the enumerated settings fields.
func AdminUpdateSettings(svc settingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.Update(r.Context(), settingsvc.UpdateInput{
			StoreName:        payload.StoreName,
			StoreEmail:       payload.StoreEmail,
			StorePhone:       payload.StorePhone,
			StoreAddress:     payload.StoreAddress,
			StoreCity:        payload.StoreCity,
			StoreCountry:     payload.StoreCountry,
			TaxNumber:        payload.TaxNumber,
			GlobalTaxPercent: payload.GlobalTaxPercent,
			Currency:         payload.Currency,
			AboutText:        payload.AboutText,
			FooterText:       payload.FooterText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSettingResponse(setting))
	}
}

type updateSettingsRequest struct {
	StoreName        *string  `json:"store_name,omitempty"`
	StoreEmail       *string  `json:"store_email,omitempty" validate:"omitempty,email"`
	StorePhone       *string  `json:"store_phone,omitempty"`
	StoreAddress     *string  `json:"store_address,omitempty"`
	StoreCity        *string  `json:"store_city,omitempty"`
	StoreCountry     *string  `json:"store_country,omitempty"`
	TaxNumber        *string  `json:"tax_number,omitempty"`
	GlobalTaxPercent *float64 `json:"global_tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Currency         *string  `json:"currency,omitempty"`
	AboutText        *string  `json:"about_text,omitempty"`
	FooterText       *string  `json:"footer_text,omitempty"`
}

type storeInfoResponse struct {
	StoreName    string `json:"store_name"`
	StoreEmail   string `json:"store_email,omitempty"`
	StorePhone   string `json:"store_phone,omitempty"`
	StoreAddress string `json:"store_address,omitempty"`
	StoreCity    string `json:"store_city,omitempty"`
	StoreCountry string `json:"store_country,omitempty"`
	Currency     string `json:"currency"`
	AboutText    string `json:"about_text,omitempty"`
	FooterText   string `json:"footer_text,omitempty"`
}

type settingResponse struct {
	StoreName        string    `json:"store_name"`
	StoreEmail       string    `json:"store_email"`
	StorePhone       string    `json:"store_phone"`
	StoreAddress     string    `json:"store_address"`
	StoreCity        string    `json:"store_city"`
	StoreCountry     string    `json:"store_country"`
	TaxNumber        string    `json:"tax_number"`
	GlobalTaxPercent float64   `json:"global_tax_percent"`
	Currency         string    `json:"currency"`
	AboutText        string    `json:"about_text"`
	FooterText       string    `json:"footer_text"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newSettingResponse(s *models.Setting) settingResponse {
	return settingResponse{
		StoreName:        s.StoreName,
		StoreEmail:       s.StoreEmail,
		StorePhone:       s.StorePhone,
		StoreAddress:     s.StoreAddress,
		StoreCity:        s.StoreCity,
		StoreCountry:     s.StoreCountry,
		TaxNumber:        s.TaxNumber,
		GlobalTaxPercent: s.GlobalTaxPercent,
		Currency:         s.Currency,
		AboutText:        s.AboutText,
		FooterText:       s.FooterText,
		UpdatedAt:        s.UpdatedAt,
	}
}
