// Package validation содержит проверки входных данных сервиса ReWear.
package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidInput возвращается для любых ошибок валидации входных данных.
var ErrInvalidInput = errors.New("invalid input")

// DefaultPointValue используется, если при публикации вещи стоимость не указана.
const DefaultPointValue = 50

// MinPasswordLength задаёт минимальную длину пароля.
const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail проверяет, похожа ли строка на адрес электронной почты.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword проверяет минимальные требования к паролю.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// ValidateItemFields проверяет обязательные поля вещи.
func ValidateItemFields(title, category, size, condition string) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	case size == "":
		return fmt.Errorf("%w: size is required", ErrInvalidInput)
	case condition == "":
		return fmt.Errorf("%w: condition is required", ErrInvalidInput)
	}
	return nil
}
