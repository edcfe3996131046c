package announce

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fmt reports template problems inline, e.g. "%!d(MISSING)", "%!d(string=x)" or "%!(EXTRA int=1)".
var formatErrorRegexp = regexp.MustCompile(`%!(\((EXTRA|BADINDEX|NOVERB|BADWIDTH|BADPREC)|.\()[^)]*\)?`)

// format applies the printf-style template to args.
// A single slice or array argument, other than a byte slice, is expanded into the argument list.
func format(template string, args ...any) (string, error) {
	if len(args) == 1 {
		args = expandArgs(args[0])
	}

	res := fmt.Sprintf(template, args...)

	if problems := formatErrorRegexp.FindAllString(res, -1); len(problems) > literalMarkers(template) {
		return "", fmt.Errorf("%w: %q with %d argument(s) gives %v", ErrFormatting, template, len(args), problems[0])
	}

	return res, nil
}

func expandArgs(arg any) []any {
	if list, ok := arg.([]any); ok {
		return list
	}

	val := reflect.ValueOf(arg)

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return []any{arg}
		}

		list := make([]any, val.Len())

		for i := range list {
			list[i] = val.Index(i).Interface()
		}

		return list

	default:
		return []any{arg}
	}
}

// literalMarkers counts the error markers that the template itself writes as plain text, e.g. "%%!d(x)".
func literalMarkers(template string) int {
	var count int

	for _, text := range literals(template) {
		count += len(formatErrorRegexp.FindAllString(text, -1))
	}

	return count
}

// literals returns the plain text of the template between its verbs, with "%%" written as "%".
func literals(template string) []string {
	var (
		texts []string
		text  strings.Builder
	)

	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			text.WriteByte(template[i])
			continue
		}

		if i+1 < len(template) && template[i+1] == '%' {
			text.WriteByte('%')
			i++

			continue
		}

		texts = append(texts, text.String())
		text.Reset()

		// Skip flags, argument indexes, width and precision, then the verb itself.
		for i++; i < len(template) && strings.IndexByte("+-# 0123456789[].*", template[i]) >= 0; i++ {
		}

		if i < len(template) {
			_, size := utf8.DecodeRuneInString(template[i:])
			i += size - 1
		}
	}

	return append(texts, text.String())
}
