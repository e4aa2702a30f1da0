package report

import (
    "archive/zip"
    "bytes"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/fleet-booking/internal/model"
)

func sampleVehicle() model.Vehicle {
    return model.Vehicle{
        ID:          7,
        PlatePrefix: "AB",
        PlateNumber: "1234",
        Province:    "Bangkok",
        BrandName:   "ISUZU",
        ModelName:   "D-MAX",
    }
}

func sampleItem() VehicleFuel {
    bookingID := uint64(31)
    odoStart := int64(20000)
    return VehicleFuel{
        Vehicle:  sampleVehicle(),
        Year:     2025,
        Month:    time.December,
        OdoStart: &odoStart,
        Refills: []model.FuelRefill{
            {
                ID:            1,
                VehicleID:     7,
                BookingID:     &bookingID,
                RefillDate:    time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
                Station:       "PTT Bangna",
                Liters:        "42.50",
                TotalPrice:    "1487.50",
                Odometer:      20390,
                VoucherNumber: "FV-2025-000001",
            },
            {
                ID:         2,
                VehicleID:  7,
                RefillDate: time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC),
                Station:    "Shell Rama 2",
                Liters:     "30.00",
                TotalPrice: "1050.00",
                Odometer:   20910,
            },
        },
    }
}

func TestFuelWorkbookLayout(t *testing.T) {
    item := sampleItem()
    f, err := FuelWorkbook(item)
    require.NoError(t, err)
    defer f.Close()

    sheet := "AB 1234 Bangkok"
    title, err := f.GetCellValue(sheet, "A1")
    require.NoError(t, err)
    assert.Contains(t, title, "2025-12")
    assert.Contains(t, title, "AB 1234 Bangkok")

    // Month odometer pair: start from the first returned trip, end
    // from the last refill row.
    odoStart, err := f.GetCellValue(sheet, "B2")
    require.NoError(t, err)
    assert.Equal(t, "20000", odoStart)
    odoEnd, err := f.GetCellValue(sheet, "H2")
    require.NoError(t, err)
    assert.Equal(t, "20910", odoEnd)

    // Header row and the two data rows.
    h, err := f.GetCellValue(sheet, "A3")
    require.NoError(t, err)
    assert.Equal(t, "Date", h)

    date, err := f.GetCellValue(sheet, "A4")
    require.NoError(t, err)
    assert.Equal(t, "2025-12-03", date)
    liters, err := f.GetCellValue(sheet, "D4")
    require.NoError(t, err)
    assert.Equal(t, "42.50", liters)
    booking, err := f.GetCellValue(sheet, "H4")
    require.NoError(t, err)
    assert.Equal(t, "#31", booking)

    // A refill without a booking leaves the booking column empty.
    booking2, err := f.GetCellValue(sheet, "H5")
    require.NoError(t, err)
    assert.Equal(t, "", booking2)

    // Totals row sums via formula, not precomputed floats.
    formula, err := f.GetCellFormula(sheet, "D6")
    require.NoError(t, err)
    assert.Equal(t, "SUM(D4:D5)", formula)

    // Distance is exact integer math on the odometer pair; the fuel
    // economy stays a formula over the decimal liters total.
    dist, err := f.GetCellValue(sheet, "B8")
    require.NoError(t, err)
    assert.Equal(t, "910", dist)
    avg, err := f.GetCellFormula(sheet, "B9")
    require.NoError(t, err)
    assert.Equal(t, "B8/D6", avg)
}

func TestFuelWorkbookNoOdoStart(t *testing.T) {
    item := sampleItem()
    item.OdoStart = nil
    f, err := FuelWorkbook(item)
    require.NoError(t, err)
    defer f.Close()

    sheet := "AB 1234 Bangkok"
    odoStart, err := f.GetCellValue(sheet, "B2")
    require.NoError(t, err)
    assert.Equal(t, "", odoStart)

    // Without a starting reading there is no distance or average row.
    dist, err := f.GetCellValue(sheet, "A8")
    require.NoError(t, err)
    assert.Equal(t, "", dist)
}

func TestWriteFuelZipSkipsEmptyVehicles(t *testing.T) {
    withData := sampleItem()
    empty := VehicleFuel{
        Vehicle: model.Vehicle{ID: 8, PlatePrefix: "CD", PlateNumber: "9", Province: "Bangkok"},
        Year:    2025,
        Month:   time.December,
    }

    var buf bytes.Buffer
    require.NoError(t, WriteFuelZip(&buf, []VehicleFuel{withData, empty}))

    zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
    require.NoError(t, err)
    require.Len(t, zr.File, 1)
    assert.Equal(t, "fuel_2025-12_AB_1234_Bangkok.xlsx", zr.File[0].Name)
}

func TestWriteFuelZipSingleVehicle(t *testing.T) {
    // An unfiltered export over a one-vehicle fleet is still a zip.
    var buf bytes.Buffer
    require.NoError(t, WriteFuelZip(&buf, []VehicleFuel{sampleItem()}))

    zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
    require.NoError(t, err)
    require.Len(t, zr.File, 1)
    assert.Equal(t, "fuel_2025-12_AB_1234_Bangkok.xlsx", zr.File[0].Name)
}

func TestFuelFileName(t *testing.T) {
    assert.Equal(t, "fuel_2025-12_AB_1234_Bangkok.xlsx", FuelFileName(sampleItem()))
}
