package handler

import (
    "bytes"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/audit"
    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/report"
    "github.com/iliyamo/fleet-booking/internal/repository"
)

// ReportHandler serves the monthly audit and the fuel exports.  Both
// walk the fleet vehicle by vehicle; the audit is advisory and never
// writes anything back.
type ReportHandler struct {
    Cfg      config.Config
    Vehicles *repository.VehicleRepo
    Bookings *repository.BookingRepo
    Fuel     *repository.FuelRepo
}

func NewReportHandler(cfg config.Config, v *repository.VehicleRepo, b *repository.BookingRepo, f *repository.FuelRepo) *ReportHandler {
    return &ReportHandler{Cfg: cfg, Vehicles: v, Bookings: b, Fuel: f}
}

type vehicleAudit struct {
    VehicleID uint64        `json:"vehicle_id"`
    Plate     string        `json:"plate"`
    Issues    []audit.Issue `json:"issues"`
}

// Audit handles GET /v1/admin/reports/audit?year=&month=[&vehicle_id=][&gap_threshold_km=].
// For each vehicle it loads the month's trips and refills in their
// stable orderings and runs the cross-check; the response lists issues
// per vehicle in vehicle order, so repeated runs over unchanged data
// compare equal.
func (h *ReportHandler) Audit(c echo.Context) error {
    year, month, err := yearMonth(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    gapKm := int64(h.Cfg.GapThresholdKm)
    if gs := c.QueryParam("gap_threshold_km"); gs != "" {
        g, err := strconv.ParseInt(gs, 10, 64)
        if err != nil || g <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gap_threshold_km"})
        }
        gapKm = g
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    vehicles, _, ok := h.selectVehicles(c)
    if !ok {
        return nil
    }

    results := make([]vehicleAudit, 0, len(vehicles))
    total := 0
    for _, v := range vehicles {
        trips, err := h.Bookings.ListOverlappingMonth(ctx, v.ID, year, month)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        refills, err := h.Fuel.ListByVehicleMonth(ctx, v.ID, year, month)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }

        // Refills may reference bookings outside the month; fetch those
        // so the fuel checks can compare against their readings.
        linkedIDs := make([]uint64, 0, len(refills))
        seen := make(map[uint64]struct{})
        for _, f := range refills {
            if f.BookingID == nil {
                continue
            }
            if _, ok := seen[*f.BookingID]; !ok {
                seen[*f.BookingID] = struct{}{}
                linkedIDs = append(linkedIDs, *f.BookingID)
            }
        }
        linked, err := h.Bookings.GetByIDs(ctx, linkedIDs)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }

        issues := audit.VehicleMonth(v.ID, trips, refills, linked, gapKm)
        total += len(issues)
        results = append(results, vehicleAudit{VehicleID: v.ID, Plate: v.DisplayPlate(), Issues: issues})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "year":             year,
        "month":            int(month),
        "gap_threshold_km": gapKm,
        "total_issues":     total,
        "vehicles":         results,
    })
}

// FuelExport handles GET /v1/admin/reports/fuel-xlsx?year=&month=[&vehicle_id=].
// With vehicle_id it streams one workbook; without it, a zip with one
// workbook per vehicle that refuelled that month, even when the fleet
// has a single vehicle.
func (h *ReportHandler) FuelExport(c echo.Context) error {
    year, month, err := yearMonth(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    vehicles, single, ok := h.selectVehicles(c)
    if !ok {
        return nil
    }

    items := make([]report.VehicleFuel, 0, len(vehicles))
    for _, v := range vehicles {
        refills, err := h.Fuel.ListByVehicleMonth(ctx, v.ID, year, month)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        odoStart, err := h.Bookings.FirstReturnedOdometer(ctx, v.ID, year, month)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        items = append(items, report.VehicleFuel{
            Vehicle: v, Year: year, Month: month, OdoStart: odoStart, Refills: refills,
        })
    }

    var buf bytes.Buffer
    if single {
        if err := report.WriteFuelXlsx(&buf, items[0]); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build workbook failed"})
        }
        c.Response().Header().Set(echo.HeaderContentDisposition,
            fmt.Sprintf("attachment; filename=%q", report.FuelFileName(items[0])))
        return c.Blob(http.StatusOK,
            "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
    }

    if err := report.WriteFuelZip(&buf, items); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build archive failed"})
    }
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("fuel_%04d-%02d.zip", year, int(month))))
    return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}

// selectVehicles resolves the optional vehicle_id filter: one vehicle
// when present (single is true), the whole fleet otherwise.  Retired
// vehicles are still auditable; their history does not vanish with
// them.  On failure the response has already been written and ok is
// false.
func (h *ReportHandler) selectVehicles(c echo.Context) (vehicles []model.Vehicle, single, ok bool) {
    ctx, cancel := reqCtx(c)
    defer cancel()

    if vs := c.QueryParam("vehicle_id"); vs != "" {
        id, err := strconv.ParseUint(vs, 10, 64)
        if err != nil || id == 0 {
            _ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
            return nil, false, false
        }
        v, err := h.Vehicles.GetByID(ctx, id)
        if err != nil {
            _ = c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
            return nil, false, false
        }
        return []model.Vehicle{*v}, true, true
    }
    list, err := h.Vehicles.List(ctx)
    if err != nil {
        _ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        return nil, false, false
    }
    return list, false, true
}

func yearMonth(c echo.Context) (int, time.Month, error) {
    y, err := strconv.Atoi(c.QueryParam("year"))
    if err != nil || y < 2000 || y > 2200 {
        return 0, 0, fmt.Errorf("invalid year")
    }
    m, err := strconv.Atoi(c.QueryParam("month"))
    if err != nil || m < 1 || m > 12 {
        return 0, 0, fmt.Errorf("invalid month")
    }
    return y, time.Month(m), nil
}
