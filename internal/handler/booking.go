package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/fleet"
    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/queue"
    "github.com/iliyamo/fleet-booking/internal/repository"
    "github.com/iliyamo/fleet-booking/internal/schedule"
    queue_publisher "github.com/iliyamo/fleet-booking/internal/service"
)

// BookingHandler serves the employee-facing booking lifecycle: finding
// a free vehicle, creating the booking and walking it through start,
// return and cancellation.  Membership (requester or co-traveler) is
// checked here; authentication has already happened in middleware.
// Every lifecycle transition runs inside a transaction so the booking
// row, the vehicle odometer and any refill count are read and written
// atomically.
type BookingHandler struct {
    Bookings  *repository.BookingRepo
    Vehicles  *repository.VehicleRepo
    Employees *repository.EmployeeRepo
    Fuel      *repository.FuelRepo
}

func NewBookingHandler(b *repository.BookingRepo, v *repository.VehicleRepo, e *repository.EmployeeRepo, f *repository.FuelRepo) *BookingHandler {
    if b == nil || v == nil || e == nil || f == nil {
        panic("nil repository passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: b, Vehicles: v, Employees: e, Fuel: f}
}

// ----- DTOs -----

type createBookingReq struct {
    VehicleID    uint64   `json:"vehicle_id"`
    StartDate    string   `json:"start_date"`
    EndDate      string   `json:"end_date"`
    Destination  string   `json:"destination"`
    CoTravelerIDs []uint64 `json:"co_traveler_ids"`
}

type startUseReq struct {
    OdometerBefore int64 `json:"odometer_before"`
}

// returnReq mirrors the paper trip form: the clerk ticks YES when fuel
// was bought on the trip, which routes the booking through
// PENDING_RETURN instead of closing it immediately.
type returnReq struct {
    OdometerAfter int64  `json:"odometer_after"`
    HasFuel       string `json:"has_fuel"` // YES or NO, default NO
}

type refillReq struct {
    RefillDate    string  `json:"refill_date"`
    Station       string  `json:"station"`
    Liters        string  `json:"liters"`
    TotalPrice    string  `json:"total_price"`
    PricePerLiter *string `json:"price_per_liter"`
    Odometer      int64   `json:"odometer"`
    VoucherNumber string  `json:"voucher_number"`
}

type bookingResp struct {
    ID             uint64   `json:"id"`
    VehicleID      uint64   `json:"vehicle_id"`
    RequesterID    uint64   `json:"requester_id"`
    StartDate      string   `json:"start_date"`
    EndDate        string   `json:"end_date"`
    Destination    string   `json:"destination"`
    Status         string   `json:"status"`
    OdometerBefore *int64   `json:"odometer_before"`
    OdometerAfter  *int64   `json:"odometer_after"`
    ReturnedByID   *uint64  `json:"returned_by,omitempty"`
    CoTravelerIDs  []uint64 `json:"co_traveler_ids,omitempty"`
}

func toBookingResp(b *model.Booking) bookingResp {
    return bookingResp{
        ID:             b.ID,
        VehicleID:      b.VehicleID,
        RequesterID:    b.RequesterID,
        StartDate:      schedule.FormatDate(b.StartDate),
        EndDate:        schedule.FormatDate(b.EndDate),
        Destination:    b.Destination,
        Status:         b.Status,
        OdometerBefore: b.OdometerBefore,
        OdometerAfter:  b.OdometerAfter,
        ReturnedByID:   b.ReturnedByID,
    }
}

type vehicleResp struct {
    ID              uint64 `json:"id"`
    Plate           string `json:"plate"`
    PlatePrefix     string `json:"plate_prefix"`
    PlateNumber     string `json:"plate_number"`
    Province        string `json:"province"`
    BrandName       string `json:"brand_name"`
    ModelName       string `json:"model_name"`
    ColorCode       string `json:"color_code"`
    SeatCount       uint32 `json:"seat_count"`
    GearType        string `json:"gear_type"`
    UsageType       string `json:"usage_type"`
    Status          string `json:"status"`
    CurrentOdometer int64  `json:"current_odometer"`
}

func toVehicleResp(v model.Vehicle) vehicleResp {
    return vehicleResp{
        ID:              v.ID,
        Plate:           v.DisplayPlate(),
        PlatePrefix:     v.PlatePrefix,
        PlateNumber:     v.PlateNumber,
        Province:        v.Province,
        BrandName:       v.BrandName,
        ModelName:       v.ModelName,
        ColorCode:       v.ColorCode,
        SeatCount:       v.SeatCount,
        GearType:        v.GearType,
        UsageType:       v.UsageType,
        Status:          v.Status,
        CurrentOdometer: v.CurrentOdometer,
    }
}

type refillResp struct {
    ID            uint64  `json:"id"`
    VehicleID     uint64  `json:"vehicle_id"`
    BookingID     *uint64 `json:"booking_id"`
    RefillDate    string  `json:"refill_date"`
    Station       string  `json:"station"`
    Liters        string  `json:"liters"`
    TotalPrice    string  `json:"total_price"`
    PricePerLiter *string `json:"price_per_liter"`
    Odometer      int64   `json:"odometer"`
    VoucherNumber string  `json:"voucher_number"`
}

func toRefillResp(f model.FuelRefill) refillResp {
    return refillResp{
        ID:            f.ID,
        VehicleID:     f.VehicleID,
        BookingID:     f.BookingID,
        RefillDate:    schedule.FormatDate(f.RefillDate),
        Station:       f.Station,
        Liters:        f.Liters,
        TotalPrice:    f.TotalPrice,
        PricePerLiter: f.PricePerLiter,
        Odometer:      f.Odometer,
        VoucherNumber: f.VoucherNumber,
    }
}

// AvailableVehicles handles
// GET /v1/vehicles/available?start_date=...&end_date=...
// It lists READY vehicles with no active booking touching the requested
// inclusive range.
func (h *BookingHandler) AvailableVehicles(c echo.Context) error {
    start, err := schedule.ParseDate(c.QueryParam("start_date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
    }
    end, err := schedule.ParseDate(c.QueryParam("end_date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
    }
    if end.Before(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must not be before start"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    ready, err := h.Vehicles.ListReady(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    busy, err := h.Bookings.BusyVehicleIDs(ctx, start, end)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    free := make([]vehicleResp, 0, len(ready))
    for _, v := range ready {
        if !busy[v.ID] {
            free = append(free, toVehicleResp(v))
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"vehicles": free})
}

// Create handles POST /v1/bookings.  The overlap check and the insert
// run in one transaction so two requests racing for the same vehicle
// and dates cannot both succeed.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.VehicleID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id required"})
    }
    start, err := schedule.ParseDate(req.StartDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
    }
    end, err := schedule.ParseDate(req.EndDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
    }
    if end.Before(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not be before start_date"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := h.Vehicles.GetByID(ctx, req.VehicleID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if v.Status != model.VehicleReady {
        return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not available for booking"})
    }

    // Co-travelers must reference existing profiles; deduplicate first.
    coIDs := dedupeIDs(req.CoTravelerIDs)
    if len(coIDs) > 0 {
        found, err := h.Employees.ExistingIDs(ctx, coIDs)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        if len(found) != len(coIDs) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown co-traveler profile"})
        }
    }

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Bookings.EnsureVacantTx(ctx, tx, req.VehicleID, start, end); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already booked for these dates"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    b := &model.Booking{
        VehicleID:   req.VehicleID,
        RequesterID: uid,
        StartDate:   start,
        EndDate:     end,
        Destination: req.Destination,
        Status:      model.BookingBooked,
    }
    if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
    }
    if len(coIDs) > 0 {
        if err := h.Bookings.SetCoTravelersTx(ctx, tx, b.ID, coIDs); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach co-travelers failed"})
        }
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    resp := toBookingResp(b)
    resp.CoTravelerIDs = coIDs
    return c.JSON(http.StatusCreated, resp)
}

// MyBookings handles GET /v1/my-bookings: every booking the caller
// requested or travels on, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    list, err := h.Bookings.ListByMember(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]bookingResp, 0, len(list))
    for i := range list {
        out = append(out, toBookingResp(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Detail handles GET /v1/bookings/:id for members of the booking.
func (h *BookingHandler) Detail(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := h.requireMember(c, b.ID, uid); err != nil {
        return err
    }

    co, err := h.Bookings.CoTravelerIDs(ctx, b.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    resp := toBookingResp(b)
    resp.CoTravelerIDs = co
    return c.JSON(http.StatusOK, resp)
}

// StartUse handles POST /v1/bookings/:id/start.  It records the
// odometer reading taken before driving off and moves the booking to
// IN_USE.  Only BOOKED bookings accept it; a second call gets 409.
func (h *BookingHandler) StartUse(c echo.Context) error {
    var req startUseReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.OdometerBefore < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "odometer_before must not be negative"})
    }
    return h.transition(c, func(b *model.Booking, _ uint64) error {
        return fleet.StartUse(b, req.OdometerBefore)
    })
}

// Return handles POST /v1/bookings/:id/return.  With has_fuel NO the
// booking closes as RETURNED immediately; with YES it parks in
// PENDING_RETURN until a refill is recorded and the return is
// confirmed.
func (h *BookingHandler) Return(c echo.Context) error {
    var req returnReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.OdometerAfter < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "odometer_after must not be negative"})
    }
    hasFuel := strings.ToUpper(strings.TrimSpace(req.HasFuel))
    if hasFuel != "" && hasFuel != "YES" && hasFuel != "NO" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "has_fuel must be YES or NO"})
    }
    return h.transition(c, func(b *model.Booking, uid uint64) error {
        if hasFuel == "YES" {
            return fleet.ReturnFuelPending(b, req.OdometerAfter, uid)
        }
        return fleet.Return(b, req.OdometerAfter, uid)
    })
}

// transition is the shared skeleton of start-use and return: load and
// lock the booking, check membership, apply the state change, persist
// booking and vehicle together.
func (h *BookingHandler) transition(c echo.Context, apply func(*model.Booking, uint64) error) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.requireMember(c, id, uid); err != nil {
        return err
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := apply(b, uid); err != nil {
        return transitionError(c, err)
    }
    if err := h.Bookings.UpdateLifecycleTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
    }
    // The resting odometer follows whichever reading the transition
    // stamped: before on start-use, after on a closed return.
    var reading *int64
    switch b.Status {
    case model.BookingInUse:
        reading = b.OdometerBefore
    case model.BookingReturned:
        reading = b.OdometerAfter
    }
    if reading != nil {
        if err := h.Vehicles.AdvanceOdometerTx(ctx, tx, b.VehicleID, *reading); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
        }
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    if b.Status == model.BookingReturned {
        h.publishReturned(c, b)
    }
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// ConfirmReturn handles POST /v1/bookings/:id/confirm-return.  It only
// succeeds when the booking is PENDING_RETURN and at least one fuel
// refill has been recorded against it.  On success the vehicle comes
// back to READY and its resting odometer advances, in the same
// transaction as the booking update.
func (h *BookingHandler) ConfirmReturn(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.requireMember(c, id, uid); err != nil {
        return err
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    v, err := h.Vehicles.GetByIDTx(ctx, tx, b.VehicleID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    refills, err := h.Fuel.CountByBookingTx(ctx, tx, b.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := fleet.ConfirmReturn(b, v, refills); err != nil {
        return transitionError(c, err)
    }
    if err := h.Bookings.UpdateLifecycleTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
    }
    if err := h.Vehicles.ReleaseTx(ctx, tx, v); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    h.publishReturned(c, b)
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel handles POST /v1/bookings/:id/cancel.  Only BOOKED bookings
// can be cancelled; once the vehicle is out the trip must be returned.
func (h *BookingHandler) Cancel(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.requireMember(c, id, uid); err != nil {
        return err
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := fleet.Cancel(b); err != nil {
        return transitionError(c, err)
    }
    if err := h.Bookings.UpdateLifecycleTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusOK, toBookingResp(b))
}

// AddRefill handles POST /v1/bookings/:id/refills.  Refills can only be
// attached while the trip is IN_USE or PENDING_RETURN; the refill is
// linked to both the booking and its vehicle.
func (h *BookingHandler) AddRefill(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req refillReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    refillDate, err := schedule.ParseDate(req.RefillDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refill_date must be YYYY-MM-DD"})
    }
    if req.Liters == "" || req.TotalPrice == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "liters and total_price required"})
    }
    if req.Odometer < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "odometer must not be negative"})
    }
    if err := h.requireMember(c, id, uid); err != nil {
        return err
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetByIDTx(ctx, tx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if b.Status != model.BookingInUse && b.Status != model.BookingPendingReturn {
        return c.JSON(http.StatusConflict, echo.Map{"error": "refills can only be added to a trip in progress"})
    }
    if !schedule.Contains(refillDate, b.StartDate, b.EndDate) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refill_date is outside the booking dates"})
    }

    bookingID := b.ID
    f := &model.FuelRefill{
        VehicleID:     b.VehicleID,
        BookingID:     &bookingID,
        RefillDate:    refillDate,
        Station:       req.Station,
        Liters:        req.Liters,
        TotalPrice:    req.TotalPrice,
        PricePerLiter: req.PricePerLiter,
        Odometer:      req.Odometer,
        VoucherNumber: req.VoucherNumber,
    }
    if err := h.Fuel.CreateTx(ctx, tx, f); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create refill failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusCreated, toRefillResp(*f))
}

// ListRefills handles GET /v1/bookings/:id/refills.
func (h *BookingHandler) ListRefills(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if err := h.requireMember(c, id, uid); err != nil {
        return err
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    list, err := h.Fuel.ListByBooking(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]refillResp, 0, len(list))
    for _, f := range list {
        out = append(out, toRefillResp(f))
    }
    return c.JSON(http.StatusOK, echo.Map{"refills": out})
}

// requireMember aborts with 403 unless the user is the requester or a
// co-traveler of the booking.  Admins pass through: their routes mount
// the same handlers behind the ADMIN role.
func (h *BookingHandler) requireMember(c echo.Context, bookingID, uid uint64) error {
    if role, _ := c.Get("role").(string); role == model.RoleAdmin {
        return nil
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Bookings.EnsureMember(ctx, bookingID, uid); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this booking"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return nil
}

// publishReturned fires the booking.returned event.  Publishing is
// best-effort: the trip is already committed, so a broker outage only
// loses the log line, not the return.
func (h *BookingHandler) publishReturned(c echo.Context, b *model.Booking) {
    v, err := h.Vehicles.GetByID(c.Request().Context(), b.VehicleID)
    plate := ""
    if err == nil {
        plate = v.DisplayPlate()
    }
    var distance int64
    if b.OdometerBefore != nil && b.OdometerAfter != nil {
        distance = *b.OdometerAfter - *b.OdometerBefore
    }
    ev := queue.NewBookingReturnedEvent(b, plate, distance)
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingReturned(ctx, ev)
    }()
}

// transitionError maps state-machine guard failures to HTTP statuses:
// bad state and guard violations are 409 conflicts.
func transitionError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, fleet.ErrBadState),
        errors.Is(err, fleet.ErrOdometerReversed),
        errors.Is(err, fleet.ErrNoRefills):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
    }
}

func dedupeIDs(ids []uint64) []uint64 {
    out := make([]uint64, 0, len(ids))
    seen := make(map[uint64]struct{}, len(ids))
    for _, id := range ids {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            out = append(out, id)
        }
    }
    return out
}
