package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openkart/storefront/internal/domain/settings"
)

// Media host folders for settings uploads.
const (
	folderLogos   = "settings/logos"
	folderBanners = "settings/banners"
	folderAds     = "settings/ads"
)

type settingsResponse struct {
	Version int `json:"version"`

	HeaderTitle   string `json:"header_title"`
	HeaderBgColor string `json:"header_bg_color"`

	CompanyLogoURL        string   `json:"company_logo_url"`
	DeliveryImageURL      string   `json:"delivery_image_url"`
	Banners               []string `json:"banners"`
	AdvertisementVideoURL string   `json:"advertisement_video_url"`

	WhatsappNumber string    `json:"whatsapp_number"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toSettingsResponse(s *settings.Settings) settingsResponse {
	banners := s.Banners
	if banners == nil {
		banners = []string{}
	}
	return settingsResponse{
		Version:               s.Version,
		HeaderTitle:           s.HeaderTitle,
		HeaderBgColor:         s.HeaderBgColor,
		CompanyLogoURL:        s.CompanyLogoURL,
		DeliveryImageURL:      s.DeliveryImageURL,
		Banners:               banners,
		AdvertisementVideoURL: s.AdvertisementVideoURL,
		WhatsappNumber:        s.WhatsappNumber,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// updateSettings replaces the whole settings record. The save carries the
// version the admin loaded; a stale version is rejected with a conflict so
// two sessions cannot silently overwrite each other. New files replace
// their counterparts; banner uploads append to the list and remove_banner
// drops an existing URL.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	s := *current
	if v := r.FormValue("version"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			h.respondError(w, r, badRequest("invalid version"))
			return
		}
		s.Version = n
	}

	if v, ok := formValue(r, "header_title"); ok {
		s.HeaderTitle = v
	}
	if v, ok := formValue(r, "header_bg_color"); ok {
		s.HeaderBgColor = v
	}
	if v, ok := formValue(r, "whatsapp_number"); ok {
		s.WhatsappNumber = v
	}

	if s.CompanyLogoURL, err = h.formAsset(r, "company_logo", s.CompanyLogoURL, folderLogos); err != nil {
		h.respondError(w, r, err)
		return
	}
	if s.DeliveryImageURL, err = h.formAsset(r, "delivery_image", s.DeliveryImageURL, folderLogos); err != nil {
		h.respondError(w, r, err)
		return
	}
	if s.AdvertisementVideoURL, err = h.formAsset(r, "advertisement_video", s.AdvertisementVideoURL, folderAds); err != nil {
		h.respondError(w, r, err)
		return
	}

	if data, fileErr := formFile(r, "banner"); fileErr != nil {
		h.respondError(w, r, fileErr)
		return
	} else if len(data) > 0 {
		url, upErr := h.uploader.Upload(r.Context(), data, folderBanners)
		if upErr != nil {
			h.respondError(w, r, upErr)
			return
		}
		s.Banners = append(s.Banners, url)
	}
	if v := r.FormValue("remove_banner"); v != "" {
		s.Banners = settings.RemoveBanner(s.Banners, v)
	}

	if err := h.settings.Replace(r.Context(), &s); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(&s))
}

// formValue distinguishes an absent form field from an explicit empty value.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
