// Package domain models USGS National Water Information System (NWIS)
// station and measurement-series data.
//
// # Data Source
//
// Raw inputs are produced by the NWIS Data Extractor: one ESRI shapefile
// (Shapefile_Stations.shp plus its .dbf attribute table) listing monitoring
// stations, and a directory of per-parameter CSV exports. The extractor is
// external to this repository; everything here treats its outputs as
// read-only.
//
// # File Naming Conventions
//
// Raw CSV names encode the series key:
//
//	station_{site_no}_parameter_{parm_cd}_dv.csv
//	station_{site_no}_WaterQualityData_parameter_{parm_cd}_ir.csv
//
// "dv" files hold daily values: one aggregated reading per day, regular
// cadence. "ir" files hold instantaneous (irregular) water-quality readings
// sampled at arbitrary times. Site numbers are USGS site identifiers
// (8-15 digits, leading zeros significant, so always treated as strings).
// Parameter codes are five-digit USGS parameter codes, e.g. 00060
// (discharge, cubic feet per second) or 00010 (water temperature, deg C).
//
// # Column Conventions
//
// Daily-value CSVs carry a "site_no" column, a "datetimeUTC" timestamp
// column, and one or more value columns named after the parameter and
// statistic (e.g. "00060_Mean"). Instantaneous CSVs carry "site_no",
// "Activity_StartDate", and "Result_Measure". Timestamps appear either as
// bare dates ("2021-04-26") or full ISO-8601 instants
// ("2021-04-26T15:10:00Z"); both forms are accepted. See [ParseTimestamp].
//
// # Station Attributes
//
// The shapefile attribute table exposes, per station: agency_cd (almost
// always "USGS"), site_no, station_nm, site_tp_cd (e.g. "ST" for stream),
// dec_lat_va and dec_long_v (decimal degrees, WGS-84).
//
// # Normalized Layout
//
// The reshape step rewrites raw rows into one file per
// (site_no, parm_cd, kind) key, named with the same patterns as the raw
// files. A generated file only ever contains rows whose site_no appears in
// the station table; rows referencing unknown stations are dropped and
// counted, never silently promoted into the table.
package domain
