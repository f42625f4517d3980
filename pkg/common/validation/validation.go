package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "social-blog/pkg/common/errors"
)

// Violations 字段名 -> 规则标识
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err 无违规时返回nil，否则返回校验错误
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return apperrors.Validation("validation failed", v)
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Length 校验去除首尾空白后的长度，max<=0 表示不限上限
func Length(field, value string, min, max int, v Violations) {
	if _, seen := v[field]; seen {
		return
	}
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n < min:
		v[field] = "too_short"
	case max > 0 && n > max:
		v[field] = "too_long"
	}
}

func Email(field, value string, v Violations) {
	if _, seen := v[field]; seen {
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Address != strings.TrimSpace(value) {
		v[field] = "invalid_email"
	}
}

// Optional 仅在字段存在时执行校验
func Optional(value *string, check func(string)) {
	if value != nil {
		check(*value)
	}
}
