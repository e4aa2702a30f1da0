package model

import "time"

// FuelRefill is one fuel purchase for a vehicle.  The booking link is
// optional: a refill created through the pending-return flow carries
// the booking it belongs to, while a standalone record has BookingID
// nil and is reported by the monthly audit as an orphaned refill.
// Rows are immutable once written except for admin correction.
//
// Fields:
//  ID            – primary key identifier.
//  VehicleID     – vehicle that was refuelled.
//  BookingID     – booking the refill belongs to (nil = orphaned).
//  RefillDate    – date of the purchase.
//  Station       – where the fuel was bought.
//  Liters        – liters purchased, stored as DECIMAL(7,2).
//  TotalPrice    – total amount paid, stored as DECIMAL(9,2).
//  PricePerLiter – unit price if recorded (nullable).
//  Odometer      – odometer reading at the pump.
//  VoucherNumber – fuel voucher number from the paper slip.
//  CreatedAt     – creation timestamp.
type FuelRefill struct {
    ID            uint64    // fuel_refills.id
    VehicleID     uint64    // fuel_refills.vehicle_id
    BookingID     *uint64   // fuel_refills.booking_id (nullable)
    RefillDate    time.Time // fuel_refills.refill_date (DATE)
    Station       string    // fuel_refills.station
    Liters        string    // fuel_refills.liters (DECIMAL as string)
    TotalPrice    string    // fuel_refills.total_price (DECIMAL as string)
    PricePerLiter *string   // fuel_refills.price_per_liter (nullable DECIMAL)
    Odometer      int64     // fuel_refills.odometer
    VoucherNumber string    // fuel_refills.voucher_number
    CreatedAt     time.Time // fuel_refills.created_at
}
