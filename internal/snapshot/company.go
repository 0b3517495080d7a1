package snapshot

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/saft/internal/model"
)

// companyFile is the on-disk shape of company.yaml.
type companyFile struct {
	RegistrationNumber    string `yaml:"registration_number"`
	TaxRegistrationNumber string `yaml:"tax_registration_number"`
	TradeRegisterNumber   string `yaml:"trade_register_number,omitempty"`
	Name                  string `yaml:"name"`
	BusinessName          string `yaml:"business_name,omitempty"`
	Address               struct {
		Street     string `yaml:"street,omitempty"`
		City       string `yaml:"city"`
		PostalCode string `yaml:"postal_code,omitempty"`
		Country    string `yaml:"country"`
	} `yaml:"address"`
	Contact struct {
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		Telephone string `yaml:"telephone"`
		Email     string `yaml:"email,omitempty"`
	} `yaml:"contact"`
	Bank struct {
		IBAN          string `yaml:"iban,omitempty"`
		AccountNumber string `yaml:"account_number,omitempty"`
		AccountName   string `yaml:"account_name,omitempty"`
		SortCode      string `yaml:"sort_code,omitempty"`
	} `yaml:"bank"`
	Currency string `yaml:"currency,omitempty"`
}

// ReadCompany decodes company.yaml.
func ReadCompany(r io.Reader) (model.Company, error) {
	var f companyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return model.Company{}, fmt.Errorf("parsing company profile: %w", err)
	}
	return model.Company{
		RegistrationNumber:    f.RegistrationNumber,
		TaxRegistrationNumber: f.TaxRegistrationNumber,
		TradeRegisterNumber:   f.TradeRegisterNumber,
		Name:                  f.Name,
		BusinessName:          f.BusinessName,
		Street:                f.Address.Street,
		City:                  f.Address.City,
		PostalCode:            f.Address.PostalCode,
		Country:               f.Address.Country,
		ContactFirstName:      f.Contact.FirstName,
		ContactLastName:       f.Contact.LastName,
		Telephone:             f.Contact.Telephone,
		Email:                 f.Contact.Email,
		IBAN:                  f.Bank.IBAN,
		BankAccountNumber:     f.Bank.AccountNumber,
		BankAccountName:       f.Bank.AccountName,
		SortCode:              f.Bank.SortCode,
		Currency:              f.Currency,
	}, nil
}

// WriteCompany encodes c as company.yaml.
func WriteCompany(w io.Writer, c model.Company) error {
	var f companyFile
	f.RegistrationNumber = c.RegistrationNumber
	f.TaxRegistrationNumber = c.TaxRegistrationNumber
	f.TradeRegisterNumber = c.TradeRegisterNumber
	f.Name = c.Name
	f.BusinessName = c.BusinessName
	f.Address.Street = c.Street
	f.Address.City = c.City
	f.Address.PostalCode = c.PostalCode
	f.Address.Country = c.Country
	f.Contact.FirstName = c.ContactFirstName
	f.Contact.LastName = c.ContactLastName
	f.Contact.Telephone = c.Telephone
	f.Contact.Email = c.Email
	f.Bank.IBAN = c.IBAN
	f.Bank.AccountNumber = c.BankAccountNumber
	f.Bank.AccountName = c.BankAccountName
	f.Bank.SortCode = c.SortCode
	f.Currency = c.Currency

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding company profile: %w", err)
	}
	return enc.Close()
}
