package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// ValidateCPU ensures name, brand and price are present.
func ValidateCPU(c models.CPU) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("cpu missing name")
	}
	if c.Brand == "" {
		return fmt.Errorf("cpu missing brand for %s", c.Name)
	}
	if c.Price == 0 {
		return fmt.Errorf("cpu missing price for %s", c.Name)
	}
	return nil
}

// ValidateGPU ensures name, brand, memory and price are present.
func ValidateGPU(g models.GPU) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("gpu missing name")
	}
	if g.Brand == "" {
		return fmt.Errorf("gpu missing brand for %s", g.Name)
	}
	if g.Memory == 0 {
		return fmt.Errorf("gpu missing memory for %s", g.Name)
	}
	if g.Price == 0 {
		return fmt.Errorf("gpu missing price for %s", g.Name)
	}
	return nil
}

// ValidateRAM ensures name, price, frequency, brand and type are present.
func ValidateRAM(r models.RAM) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("ram missing name")
	}
	if r.Price == 0 {
		return fmt.Errorf("ram missing price for %s", r.Name)
	}
	if r.Frequency == 0 {
		return fmt.Errorf("ram missing frequency for %s", r.Name)
	}
	if r.Brand == "" {
		return fmt.Errorf("ram missing brand for %s", r.Name)
	}
	if r.RAMType == "" {
		return fmt.Errorf("ram missing type for %s", r.Name)
	}
	return nil
}

// ValidatePSU ensures name, price and power are present.
func ValidatePSU(p models.PSU) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("psu missing name")
	}
	if p.Price == 0 {
		return fmt.Errorf("psu missing price for %s", p.Name)
	}
	if p.Power == 0 {
		return fmt.Errorf("psu missing power for %s", p.Name)
	}
	return nil
}

// Validate dispatches to the required-field check for the record's category.
func Validate(p models.Product) error {
	switch v := p.(type) {
	case models.CPU:
		return ValidateCPU(v)
	case models.GPU:
		return ValidateGPU(v)
	case models.RAM:
		return ValidateRAM(v)
	case models.PSU:
		return ValidatePSU(v)
	case nil:
		return fmt.Errorf("product is nil")
	default:
		return fmt.Errorf("unsupported product type %T", p)
	}
}
