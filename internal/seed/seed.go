// Package seed fills an empty database with a working data set: an
// admin account, a handful of employees, a small fleet and one fully
// returned trip with a fuel refill so the audit and the fuel report
// have something to chew on.  It is meant for development databases;
// running it twice fails on the unique employee codes.
package seed

import (
    "context"
    "database/sql"
    "log"
    "time"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/fleet"
    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/repository"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

type person struct {
    code, first, last, division, department, position, role string
}

var people = []person{
    {"ADM001", "Pranee", "Suksawat", "Administration", "Fleet", "Fleet Manager", model.RoleAdmin},
    {"EMP101", "Somchai", "Boonmee", "Engineering", "Field Service", "Engineer", model.RoleEmployee},
    {"EMP102", "Kanya", "Thongdee", "Engineering", "Inspection", "Inspector", model.RoleEmployee},
    {"EMP103", "Anan", "Chaiyo", "Operations", "Logistics", "Driver", model.RoleEmployee},
}

var cars = []model.Vehicle{
    {PlatePrefix: "กข", PlateNumber: "1234", Province: "Bangkok", BrandName: "ISUZU", ModelName: "D-MAX",
        ColorCode: "#4F86C6", SeatCount: 4, GearType: "MANUAL", UsageType: "POOL", Status: model.VehicleReady, CurrentOdometer: 20200},
    {PlatePrefix: "คง", PlateNumber: "5678", Province: "Bangkok", BrandName: "TOYOTA", ModelName: "HILUX",
        ColorCode: "#C64F4F", SeatCount: 4, GearType: "AUTO", UsageType: "POOL", Status: model.VehicleReady, CurrentOdometer: 48100},
    {PlatePrefix: "จฉ", PlateNumber: "9012", Province: "Nonthaburi", BrandName: "TOYOTA", ModelName: "ALTIS",
        ColorCode: "#4FC686", SeatCount: 5, GearType: "AUTO", UsageType: "OFFICE", Status: model.VehicleMaintenance, CurrentOdometer: 91500},
}

// Run seeds the database.  Accounts, profiles and vehicles go in one
// transaction; the sample trip is then driven through the real
// lifecycle so its readings are consistent.
func Run(ctx context.Context, db *sql.DB, cfg config.Config) error {
    users := repository.NewUserRepo(db)
    employees := repository.NewEmployeeRepo(db)
    vehicles := repository.NewVehicleRepo(db)
    bookings := repository.NewBookingRepo(db)
    fuel := repository.NewFuelRepo(db)

    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    userIDs := make(map[string]uint64, len(people))
    for _, p := range people {
        uid, err := users.CreateTx(ctx, tx, p.code, p.code, p.role, cfg.BcryptCost)
        if err != nil {
            return err
        }
        userIDs[p.code] = uid
        profile := &model.EmployeeProfile{
            UserID:       uid,
            EmployeeCode: p.code,
            FirstName:    p.first,
            LastName:     p.last,
            Division:     p.division,
            Department:   p.department,
            Position:     p.position,
            Role:         p.role,
            WorkStatus:   model.WorkActive,
        }
        if err := employees.CreateTx(ctx, tx, profile); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true

    for i := range cars {
        if err := vehicles.Create(ctx, &cars[i]); err != nil {
            return err
        }
    }

    // One finished trip on the first vehicle last week, refuelled once.
    driver := userIDs["EMP101"]
    start := schedule.Day(time.Now().UTC().AddDate(0, 0, -7))
    end := start.AddDate(0, 0, 2)

    tx, err = db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed = false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b := &model.Booking{
        VehicleID:   cars[0].ID,
        RequesterID: driver,
        StartDate:   start,
        EndDate:     end,
        Destination: "Chonburi plant inspection",
        Status:      model.BookingBooked,
    }
    if err := bookings.CreateTx(ctx, tx, b); err != nil {
        return err
    }
    if err := fleet.StartUse(b, 20200); err != nil {
        return err
    }
    if err := fleet.ReturnFuelPending(b, 20480, driver); err != nil {
        return err
    }

    vouchers := NewVoucherSequence("FV", start.Year(), 1)
    bookingID := b.ID
    refill := &model.FuelRefill{
        VehicleID:     cars[0].ID,
        BookingID:     &bookingID,
        RefillDate:    start.AddDate(0, 0, 1),
        Station:       "PTT Bangna",
        Liters:        "42.50",
        TotalPrice:    "1487.50",
        Odometer:      20390,
        VoucherNumber: vouchers.Next(),
    }
    if err := fuel.CreateTx(ctx, tx, refill); err != nil {
        return err
    }
    if err := fleet.ConfirmReturn(b, &cars[0], 1); err != nil {
        return err
    }
    if err := bookings.UpdateLifecycleTx(ctx, tx, b); err != nil {
        return err
    }
    if err := vehicles.ReleaseTx(ctx, tx, &cars[0]); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true

    log.Printf("seeded %d employees, %d vehicles, 1 returned trip", len(people), len(cars))
    return nil
}
