package model

import "time"

// Vehicle statuses.  DELETE on the admin API never removes a row;
// it moves the vehicle to RETIRED instead.
const (
    VehicleReady        = "READY"
    VehicleMaintenance  = "MAINTENANCE"
    VehicleOutOfService = "OUT_OF_SERVICE"
    VehicleRetired      = "RETIRED"
)

// Vehicle represents one pooled car in the organization's fleet.
// The registration is split into its three printed parts (prefix,
// number, province) because listings and reports sort and display
// them independently.  This struct corresponds to a row in the
// `vehicles` table.
//
// Fields:
//  ID              – primary key identifier.
//  PlatePrefix     – letter group of the plate.
//  PlateNumber     – numeric part of the plate.
//  Province        – province printed on the plate.
//  BrandName       – manufacturer, e.g. ISUZU.
//  ModelName       – model, e.g. D-MAX.
//  ColorCode       – hex color used by the booking calendar UI.
//  SeatCount       – number of seats.
//  GearType        – AUTO or MANUAL.
//  UsageType       – POOL, OFFICE, INSPECT or OTHER.
//  Status          – READY, MAINTENANCE, OUT_OF_SERVICE or RETIRED.
//  CurrentOdometer – resting odometer in km; only ever advanced with
//                    max(current, reading), so it is monotonically
//                    non-decreasing across confirmed trips.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Vehicle struct {
    ID              uint64    // vehicles.id
    PlatePrefix     string    // vehicles.plate_prefix
    PlateNumber     string    // vehicles.plate_number
    Province        string    // vehicles.province
    BrandName       string    // vehicles.brand_name
    ModelName       string    // vehicles.model_name
    ColorCode       string    // vehicles.color_code
    SeatCount       uint32    // vehicles.seat_count
    GearType        string    // vehicles.gear_type
    UsageType       string    // vehicles.usage_type
    Status          string    // vehicles.status
    CurrentOdometer int64     // vehicles.current_odometer
    CreatedAt       time.Time // vehicles.created_at
    UpdatedAt       time.Time // vehicles.updated_at
}

// DisplayPlate renders the registration the way paper forms print it:
// "<prefix> <number> <province>".
func (v Vehicle) DisplayPlate() string {
    return v.PlatePrefix + " " + v.PlateNumber + " " + v.Province
}
