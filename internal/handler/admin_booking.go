package handler

import (
    "database/sql"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/repository"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// AdminBookingHandler covers the back-office view of bookings: the
// filtered list, the detail and after-the-fact corrections of booking
// rows and fuel refills.  Corrections exist because the data originates
// from paper trip forms and clerks mistype.
type AdminBookingHandler struct {
    Bookings *repository.BookingRepo
    Fuel     *repository.FuelRepo
}

func NewAdminBookingHandler(b *repository.BookingRepo, f *repository.FuelRepo) *AdminBookingHandler {
    return &AdminBookingHandler{Bookings: b, Fuel: f}
}

var bookingStatuses = map[string]bool{
    model.BookingBooked:        true,
    model.BookingInUse:         true,
    model.BookingPendingReturn: true,
    model.BookingReturned:      true,
    model.BookingCancelled:     true,
}

// List handles GET /v1/admin/bookings with optional year, month,
// vehicle_id and status query filters.
func (h *AdminBookingHandler) List(c echo.Context) error {
    var f repository.AdminFilter

    if ys := c.QueryParam("year"); ys != "" {
        y, err := strconv.Atoi(ys)
        if err != nil || y < 2000 || y > 2200 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
        }
        m, err := strconv.Atoi(c.QueryParam("month"))
        if err != nil || m < 1 || m > 12 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
        }
        f.Year, f.Month = y, time.Month(m)
    }
    if vs := c.QueryParam("vehicle_id"); vs != "" {
        v, err := strconv.ParseUint(vs, 10, 64)
        if err != nil || v == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
        }
        f.VehicleID = v
    }
    if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
        if !bookingStatuses[s] {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
        }
        f.Status = s
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    list, err := h.Bookings.ListForAdmin(ctx, f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]bookingResp, 0, len(list))
    for i := range list {
        out = append(out, toBookingResp(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Detail handles GET /v1/admin/bookings/:id including co-travelers and
// refills.
func (h *AdminBookingHandler) Detail(c echo.Context) error {
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
    co, err := h.Bookings.CoTravelerIDs(ctx, b.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    refills, err := h.Fuel.ListByBooking(ctx, b.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    resp := toBookingResp(b)
    resp.CoTravelerIDs = co
    rr := make([]refillResp, 0, len(refills))
    for _, f := range refills {
        rr = append(rr, toRefillResp(f))
    }
    return c.JSON(http.StatusOK, echo.Map{"booking": resp, "refills": rr})
}

type adminBookingReq struct {
    VehicleID      uint64   `json:"vehicle_id"`
    StartDate      string   `json:"start_date"`
    EndDate        string   `json:"end_date"`
    Destination    string   `json:"destination"`
    Status         string   `json:"status"`
    OdometerBefore *int64   `json:"odometer_before"`
    OdometerAfter  *int64   `json:"odometer_after"`
    CoTravelerIDs  []uint64 `json:"co_traveler_ids"`
}

// Update handles PUT /v1/admin/bookings/:id.  The status may be set to
// any value here: corrections are not bound by the lifecycle guards,
// only the audit will flag inconsistent readings afterwards.
func (h *AdminBookingHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req adminBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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
    req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
    if !bookingStatuses[req.Status] {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
    }
    if req.VehicleID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id required"})
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

    b.VehicleID = req.VehicleID
    b.StartDate = start
    b.EndDate = end
    b.Destination = req.Destination
    b.Status = req.Status
    b.OdometerBefore = req.OdometerBefore
    b.OdometerAfter = req.OdometerAfter
    if err := h.Bookings.AdminUpdateTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
    }
    if req.CoTravelerIDs != nil {
        if err := h.Bookings.SetCoTravelersTx(ctx, tx, b.ID, dedupeIDs(req.CoTravelerIDs)); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update co-travelers failed"})
        }
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusOK, toBookingResp(b))
}

// UpdateRefill handles PUT /v1/admin/refills/:id, correcting one fuel
// record.  The booking and vehicle links are immutable; move a refill
// by deleting and re-entering it through the booking flow.
func (h *AdminBookingHandler) UpdateRefill(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refill id"})
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

    ctx, cancel := reqCtx(c)
    defer cancel()

    f, err := h.Fuel.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "refill not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    f.RefillDate = refillDate
    f.Station = req.Station
    f.Liters = req.Liters
    f.TotalPrice = req.TotalPrice
    f.PricePerLiter = req.PricePerLiter
    f.Odometer = req.Odometer
    f.VoucherNumber = req.VoucherNumber
    if err := h.Fuel.Update(ctx, f); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update refill failed"})
    }
    return c.JSON(http.StatusOK, toRefillResp(*f))
}
