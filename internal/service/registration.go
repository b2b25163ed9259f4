package service

import (
    "regexp"
    "strings"
    "time"

    "github.com/iliyamo/airline-reservation/internal/model"
)

const dateLayout = "2006-01-02"

var phonePattern = regexp.MustCompile(`^[\d\s()+-]{7,30}$`)

// CustomerRegistration is the sign-up form of a customer.  The length
// limits match the customers table.
type CustomerRegistration struct {
    Email           string `json:"email" validate:"required,email,max=100"`
    Password        string `json:"password" validate:"required,min=6"`
    Name            string `json:"name" validate:"required,max=120"`
    Phone           string `json:"phone_number" validate:"required,phone"`
    Building        string `json:"building_number" validate:"required,max=30"`
    Street          string `json:"street" validate:"required,max=120"`
    City            string `json:"city" validate:"required,max=100"`
    State           string `json:"state" validate:"required,max=100"`
    PassportNumber  string `json:"passport_number" validate:"required,max=30"`
    PassportCountry string `json:"passport_country" validate:"required,max=100"`
    PassportExpiry  string `json:"passport_expiration" validate:"required,datetime=2006-01-02"`
    DateOfBirth     string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// StaffRegistration is the sign-up form of an airline staff member.
type StaffRegistration struct {
    Airline     string   `json:"airline_name" validate:"required,max=50"`
    Username    string   `json:"username" validate:"required,max=50"`
    Email       string   `json:"email" validate:"required,email,max=100"`
    Password    string   `json:"password" validate:"required,min=6"`
    FirstName   string   `json:"first_name" validate:"required,max=60"`
    LastName    string   `json:"last_name" validate:"required,max=60"`
    DateOfBirth string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
    Phones      []string `json:"phone_numbers" validate:"dive,phone"`
}

// ValidateCustomer normalises in and returns the customer row to store,
// without its password hash.
func ValidateCustomer(in CustomerRegistration, now time.Time) (model.Customer, error) {
    in.Email = normEmail(in.Email)
    for _, f := range []*string{&in.Name, &in.Phone, &in.Building, &in.Street, &in.City, &in.State,
        &in.PassportNumber, &in.PassportCountry, &in.PassportExpiry, &in.DateOfBirth} {
        *f = strings.TrimSpace(*f)
    }
    if err := check(in); err != nil {
        return model.Customer{}, err
    }
    if err := checkPasswordBytes(in.Password); err != nil {
        return model.Customer{}, err
    }
    c := model.Customer{
        Email:           in.Email,
        Name:            in.Name,
        Phone:           in.Phone,
        Building:        in.Building,
        Street:          in.Street,
        City:            in.City,
        State:           in.State,
        PassportNumber:  in.PassportNumber,
        PassportCountry: in.PassportCountry,
        PassportExpiry:  parseDate(in.PassportExpiry),
        DateOfBirth:     parseDate(in.DateOfBirth),
    }
    if !c.PassportExpiry.After(now) {
        return model.Customer{}, invalid("passport_expiration", "passport has expired")
    }
    if !c.DateOfBirth.Before(now) {
        return model.Customer{}, invalid("date_of_birth", "must be in the past")
    }
    return c, nil
}

// ValidateStaff normalises in and returns the staff row to store, without
// its password hash.  Blank and repeated phone numbers are dropped.
func ValidateStaff(in StaffRegistration, now time.Time) (model.Staff, error) {
    in.Email = normEmail(in.Email)
    for _, f := range []*string{&in.Airline, &in.Username, &in.FirstName, &in.LastName, &in.DateOfBirth} {
        *f = strings.TrimSpace(*f)
    }
    phones := []string{}
    seen := map[string]bool{}
    for _, p := range in.Phones {
        p = strings.TrimSpace(p)
        if p == "" || seen[p] {
            continue
        }
        seen[p] = true
        phones = append(phones, p)
    }
    in.Phones = phones
    if err := check(in); err != nil {
        return model.Staff{}, err
    }
    if err := checkPasswordBytes(in.Password); err != nil {
        return model.Staff{}, err
    }
    s := model.Staff{
        Airline:     in.Airline,
        Username:    in.Username,
        Email:       in.Email,
        FirstName:   in.FirstName,
        LastName:    in.LastName,
        DateOfBirth: parseDate(in.DateOfBirth),
        Phones:      phones,
    }
    if !s.DateOfBirth.Before(now) {
        return model.Staff{}, invalid("date_of_birth", "must be in the past")
    }
    return s, nil
}

func normEmail(v string) string {
    return strings.ToLower(strings.TrimSpace(v))
}

// bcrypt ignores everything past 72 bytes
func checkPasswordBytes(p string) error {
    if len(p) > 72 {
        return invalid("password", "must be at most 72 bytes")
    }
    return nil
}

// parseDate reads a date already checked by the datetime tag.
func parseDate(v string) time.Time {
    t, _ := time.ParseInLocation(dateLayout, v, time.UTC)
    return t
}
