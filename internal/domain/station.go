package domain

import "fmt"

// Station is one NWIS monitoring location from the shapefile attribute table.
type Station struct {
	AgencyCode   string  `json:"agency_cd"`
	SiteNumber   string  `json:"site_no"`
	Name         string  `json:"station_nm"`
	SiteTypeCode string  `json:"site_tp_cd"`
	Latitude     float64 `json:"dec_lat_va"`
	Longitude    float64 `json:"dec_long_v"`
}

// Validate reports whether the station carries a usable identity and
// coordinates. Stations failing validation are skipped at load time rather
// than rendered at (0, 0).
func (s Station) Validate() error {
	if s.SiteNumber == "" {
		return fmt.Errorf("station %q: missing site number", s.Name)
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("station %s: invalid latitude %f", s.SiteNumber, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("station %s: invalid longitude %f", s.SiteNumber, s.Longitude)
	}
	return nil
}
