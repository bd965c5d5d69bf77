package enums

import "fmt"

// PromoCodeType scopes how a promotional code's usage limit is counted.
type PromoCodeType string

const (
	// PromoCodeTypePerUser counts usages per requesting user.
	PromoCodeTypePerUser PromoCodeType = "per_user"
	// PromoCodeTypeGlobal counts usages across all users.
	PromoCodeTypeGlobal PromoCodeType = "global"
)

var validPromoCodeTypes = []PromoCodeType{
	PromoCodeTypePerUser,
	PromoCodeTypeGlobal,
}

// String implements fmt.Stringer.
func (p PromoCodeType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromoCodeType.
func (p PromoCodeType) IsValid() bool {
	for _, candidate := range validPromoCodeTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromoCodeType converts raw input into a PromoCodeType.
func ParsePromoCodeType(value string) (PromoCodeType, error) {
	for _, candidate := range validPromoCodeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promo code type %q", value)
}
