package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"sort"
	"strconv"

	"server/internal/domain"
	"server/internal/infra/geoip"
)

type hospitalView struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Phone     string  `json:"phone,omitempty"`
	Email     string  `json:"email,omitempty"`
}

func viewHospital(h *domain.Hospital) hospitalView {
	return hospitalView{
		ID:        h.ID,
		Name:      h.Name,
		Address:   h.Address,
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
		Phone:     h.Phone,
		Email:     h.Email,
	}
}

// HospitalsList returns every registered hospital. Public.
func (a *App) HospitalsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Hospitals.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	views := make([]hospitalView, 0, len(items))
	for i := range items {
		views = append(views, viewHospital(&items[i]))
	}
	a.json(w, http.StatusOK, views)
}

// HospitalsCreate registers a new hospital. Admin only.
func (a *App) HospitalsCreate(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	var req struct {
		Name      string  `json:"name"`
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Phone     string  `json:"phone"`
		Email     string  `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Name == "" || req.Address == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and address are required")
		return
	}
	created, err := a.Hospitals.Create(r.Context(), &domain.Hospital{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, viewHospital(created))
}

type nearbyHospital struct {
	hospitalView
	DistanceKm float64 `json:"distanceKm"`
}

// HospitalsNearby returns hospitals within a radius of the given coordinates.
// When lat/lng are absent, the client IP is resolved through GeoIP as a
// fallback.
func (a *App) HospitalsNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	radius := 10.0
	if v := q.Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid radius")
			return
		}
		radius = parsed
	}

	lat, lng, err := a.resolveCoordinates(q.Get("lat"), q.Get("lng"), r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	items, err := a.Hospitals.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}

	nearby := make([]nearbyHospital, 0, len(items))
	for _, h := range items {
		d := haversineKm(lat, lng, h.Latitude, h.Longitude)
		if d <= radius {
			nearby = append(nearby, nearbyHospital{hospitalView: viewHospital(&h), DistanceKm: math.Round(d*10) / 10})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	a.json(w, http.StatusOK, nearby)
}

func (a *App) resolveCoordinates(latStr, lngStr string, r *http.Request) (float64, float64, error) {
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return 0, 0, errors.New("invalid latitude")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return 0, 0, errors.New("invalid longitude")
		}
		return lat, lng, nil
	}
	if a.GeoIP == nil {
		return 0, 0, errors.New("latitude and longitude are required")
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	lat, lng, err := a.GeoIP.Location(ip)
	if err != nil {
		if errors.Is(err, geoip.ErrUnavailable) {
			return 0, 0, errors.New("latitude and longitude are required")
		}
		return 0, 0, errors.New("could not resolve a location for the client")
	}
	return lat, lng, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
