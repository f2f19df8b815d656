package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/motomart/pkg/validate"
)

type productInput struct {
	Name     string  `json:"name"     validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"    validate:"required,gt=0"`
	Image    string  `json:"image"    validate:"required,url"`
	Desc     string  `json:"description" validate:"nullable,max=2000"`
}

func TestStructValid(t *testing.T) {
	errs := validate.Struct(&productInput{
		Name:     "Car",
		Category: "Car (Automobile)",
		Price:    1000,
		Image:    "http://x/y.png",
	})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestStructMissingFields(t *testing.T) {
	errs := validate.Struct(&productInput{Name: "Car"})
	assert.True(t, validate.HasErrors(errs))
	assert.Contains(t, errs, "category")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "image")
}

func TestGtRejectsZeroAndNegative(t *testing.T) {
	for _, price := range []float64{0, -5} {
		errs := validate.Struct(&productInput{
			Name:     "Car",
			Category: "Car",
			Price:    price,
			Image:    "http://x/y.png",
		})
		assert.Contains(t, errs, "price", "price=%v must fail", price)
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	errs := validate.Struct(&productInput{
		Name:     "Car",
		Category: "Car",
		Price:    1,
		Image:    "http://x/y.png",
		Desc:     "",
	})
	assert.NotContains(t, errs, "description")
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(&in{Email: "a@x.com"})))
	assert.True(t, validate.HasErrors(validate.Struct(&in{Email: "not-an-email"})))
}

func TestInRuleKeepsParamListTogether(t *testing.T) {
	type in struct {
		Currency string `json:"currency" validate:"nullable,in=usd,eur,gbp"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(&in{Currency: "eur"})))
	assert.True(t, validate.HasErrors(validate.Struct(&in{Currency: "xxx"})))
	assert.False(t, validate.HasErrors(validate.Struct(&in{Currency: ""})))
}

func TestFirstIsDeterministic(t *testing.T) {
	errs := map[string]string{"b": "msg b", "a": "msg a"}
	assert.Equal(t, "msg a", validate.First(errs))
	assert.Equal(t, "", validate.First(nil))
}
