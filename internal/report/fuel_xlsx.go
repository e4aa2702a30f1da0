// Package report renders the monthly fuel report as xlsx workbooks,
// one per vehicle, and bundles multi-vehicle exports into a zip
// archive.  Workbooks are built in memory and streamed to the caller.
package report

import (
    "archive/zip"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/xuri/excelize/v2"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// VehicleFuel is one vehicle's slice of the monthly export.  OdoStart
// is the month's starting odometer, taken from the first trip returned
// in the month; nil when no such trip exists.  The ending odometer
// comes from the last refill row.
type VehicleFuel struct {
    Vehicle  model.Vehicle
    Year     int
    Month    time.Month
    OdoStart *int64
    Refills  []model.FuelRefill
}

var fuelHeader = []string{
    "Date", "Station", "Voucher", "Liters", "Total Price", "Price/Liter", "Odometer", "Booking",
}

// FuelWorkbook renders one vehicle's refills for the month into a
// workbook.  Liters and prices are written as their exact decimal
// strings; the totals row and the km-per-liter summary use formulas so
// the spreadsheet, not this code, does the decimal arithmetic.  The
// ending odometer is the last refill's reading, mirroring the paper
// form where the last pump entry closes the month.
func FuelWorkbook(item VehicleFuel) (*excelize.File, error) {
    f := excelize.NewFile()
    sheet := sheetName(item.Vehicle)
    if err := f.SetSheetName("Sheet1", sheet); err != nil {
        return nil, err
    }

    title := fmt.Sprintf("Fuel report %04d-%02d — %s %s (%s)",
        item.Year, int(item.Month), item.Vehicle.BrandName, item.Vehicle.ModelName, item.Vehicle.DisplayPlate())
    if err := f.SetCellValue(sheet, "A1", title); err != nil {
        return nil, err
    }

    var odoEnd *int64
    if n := len(item.Refills); n > 0 {
        last := item.Refills[n-1].Odometer
        odoEnd = &last
    }
    if err := f.SetCellValue(sheet, "A2", "Odometer start"); err != nil {
        return nil, err
    }
    if item.OdoStart != nil {
        if err := f.SetCellValue(sheet, "B2", *item.OdoStart); err != nil {
            return nil, err
        }
    }
    if err := f.SetCellValue(sheet, "G2", "Odometer end"); err != nil {
        return nil, err
    }
    if odoEnd != nil {
        if err := f.SetCellValue(sheet, "H2", *odoEnd); err != nil {
            return nil, err
        }
    }

    for i, h := range fuelHeader {
        cell, err := excelize.CoordinatesToCellName(i+1, 3)
        if err != nil {
            return nil, err
        }
        if err := f.SetCellValue(sheet, cell, h); err != nil {
            return nil, err
        }
    }

    row := 4
    for _, r := range item.Refills {
        booking := ""
        if r.BookingID != nil {
            booking = fmt.Sprintf("#%d", *r.BookingID)
        }
        ppl := ""
        if r.PricePerLiter != nil {
            ppl = *r.PricePerLiter
        }
        values := []interface{}{
            schedule.FormatDate(r.RefillDate),
            r.Station,
            r.VoucherNumber,
            r.Liters,
            r.TotalPrice,
            ppl,
            r.Odometer,
            booking,
        }
        for i, v := range values {
            cell, err := excelize.CoordinatesToCellName(i+1, row)
            if err != nil {
                return nil, err
            }
            if err := f.SetCellValue(sheet, cell, v); err != nil {
                return nil, err
            }
        }
        row++
    }

    totalRow := row
    if len(item.Refills) > 0 {
        if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), "Total"); err != nil {
            return nil, err
        }
        litersSum := fmt.Sprintf("SUM(D4:D%d)", totalRow-1)
        priceSum := fmt.Sprintf("SUM(E4:E%d)", totalRow-1)
        if err := f.SetCellFormula(sheet, fmt.Sprintf("D%d", totalRow), litersSum); err != nil {
            return nil, err
        }
        if err := f.SetCellFormula(sheet, fmt.Sprintf("E%d", totalRow), priceSum); err != nil {
            return nil, err
        }
        row++
    }

    if item.OdoStart != nil && odoEnd != nil {
        distRow := row + 1
        if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", distRow), "Distance (km)"); err != nil {
            return nil, err
        }
        if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", distRow), *odoEnd-*item.OdoStart); err != nil {
            return nil, err
        }
        if len(item.Refills) > 0 {
            avgRow := distRow + 1
            if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", avgRow), "Avg km/liter"); err != nil {
                return nil, err
            }
            avg := fmt.Sprintf("B%d/D%d", distRow, totalRow)
            if err := f.SetCellFormula(sheet, fmt.Sprintf("B%d", avgRow), avg); err != nil {
                return nil, err
            }
        }
    }
    return f, nil
}

// WriteFuelXlsx writes a single vehicle's workbook to w.
func WriteFuelXlsx(w io.Writer, item VehicleFuel) error {
    f, err := FuelWorkbook(item)
    if err != nil {
        return err
    }
    defer f.Close()
    _, err = f.WriteTo(w)
    return err
}

// WriteFuelZip writes one xlsx per vehicle into a zip archive on w.
// Vehicles without refills in the month are skipped.
func WriteFuelZip(w io.Writer, items []VehicleFuel) error {
    zw := zip.NewWriter(w)
    for _, item := range items {
        if len(item.Refills) == 0 {
            continue
        }
        entry, err := zw.Create(FuelFileName(item))
        if err != nil {
            return err
        }
        if err := WriteFuelXlsx(entry, item); err != nil {
            return err
        }
    }
    return zw.Close()
}

// FuelFileName builds the export file name for one vehicle's workbook.
func FuelFileName(item VehicleFuel) string {
    plate := strings.ReplaceAll(item.Vehicle.DisplayPlate(), " ", "_")
    return fmt.Sprintf("fuel_%04d-%02d_%s.xlsx", item.Year, int(item.Month), plate)
}

// sheetName renders the vehicle plate as a sheet title, clipped to the
// 31 character limit xlsx imposes.
func sheetName(v model.Vehicle) string {
    name := v.DisplayPlate()
    if len(name) > 31 {
        name = name[:31]
    }
    return name
}
