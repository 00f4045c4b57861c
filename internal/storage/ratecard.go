package storage

import (
	"fmt"
	"io"

	"doorstep/internal/pricing"

	"github.com/xuri/excelize/v2"
)

const (
	SheetBike   = "Bike"
	SheetCar    = "Car"
	SheetAddons = "Add-ons"
)

var rateCardHeaders = []string{
	"ID", "Title", "Category", "Base Min", "Base Max", "City Min", "City Max", "Price",
}

// WriteRateCard renders the city-adjusted price list as an xlsx workbook,
// one sheet per vehicle type plus one for add-ons.
func WriteRateCard(w io.Writer, engine *pricing.Engine, city pricing.City) error {
	multiplier, err := engine.Multiplier(city)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBike); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetCar); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAddons); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0EBF5"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for _, vehicle := range []pricing.VehicleType{pricing.VehicleBike, pricing.VehicleCar} {
		sheet := SheetBike
		if vehicle == pricing.VehicleCar {
			sheet = SheetCar
		}

		var rows [][]interface{}
		for _, s := range engine.ServicesFor(vehicle) {
			row, err := rateCardRow(engine, city, s.ID, s.Title, string(s.Category), s.PriceRange)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if err := writeSheet(f, sheet, headerStyle, rows); err != nil {
			return err
		}
	}

	var rows [][]interface{}
	for _, a := range engine.Addons() {
		row, err := rateCardRow(engine, city, a.ID, a.Title, "add-on", a.PriceRange)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, SheetAddons, headerStyle, rows); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Rate card: %s", city),
		Description: fmt.Sprintf("City multiplier %+d%%", multiplier),
	}); err != nil {
		return fmt.Errorf("failed to set properties: %w", err)
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write rate card: %w", err)
	}
	return nil
}

func rateCardRow(engine *pricing.Engine, city pricing.City, id, title, category string, base pricing.PriceRange) ([]interface{}, error) {
	adjusted, err := engine.ApplyCityMultiplier(base, city)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		id,
		title,
		category,
		base.Min,
		base.Max,
		adjusted.Min,
		adjusted.Max,
		pricing.FormatPriceRange(adjusted),
	}, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, rows [][]interface{}) error {
	for col, header := range rateCardHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(rateCardHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for row, values := range rows {
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}
