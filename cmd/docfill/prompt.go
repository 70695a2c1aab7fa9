package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dgallion1/docfill/internal/fields"
	"github.com/dgallion1/docfill/internal/format"
)

// setFlags collects repeated -set name=value flags. Later flags win.
type setFlags map[string]string

func (s *setFlags) String() string {
	if s == nil || *s == nil {
		return ""
	}
	parts := make([]string, 0, len(*s))
	for k, v := range *s {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (s *setFlags) Set(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", arg)
	}
	if *s == nil {
		*s = make(setFlags)
	}
	(*s)[name] = value
	return nil
}

func (s setFlags) values() []fields.Value {
	return fields.ValuesFromMap(s)
}

// promptMissing asks for every input field not already set.
func promptMissing(ctx context.Context, f *format.Formatter, specs []fields.Spec, set setFlags) ([]fields.Value, error) {
	var out []fields.Value
	for _, spec := range specs {
		if _, ok := set[spec.Name]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := ask(spec, f)
		if err != nil {
			return nil, err
		}
		out = append(out, fields.Value{Name: spec.Name, Raw: raw})
	}
	return out, nil
}

func ask(spec fields.Spec, f *format.Formatter) (string, error) {
	message := spec.DisplayLabel()
	var prompt survey.Prompt
	if spec.Type == fields.TypeTextarea {
		prompt = &survey.Multiline{Message: message, Help: spec.Help, Default: spec.Default}
	} else {
		prompt = &survey.Input{Message: message, Help: spec.Help, Default: spec.Default}
	}

	var opts []survey.AskOpt
	if v := validator(spec, f); v != nil {
		opts = append(opts, survey.WithValidator(v))
	}
	var answer string
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}

var errNotInteger = errors.New("enter a whole number")

// validator checks answers the way the resolver will read them. Blank
// optional answers always pass.
func validator(spec fields.Spec, f *format.Formatter) survey.Validator {
	var checks []survey.Validator
	if spec.Required {
		checks = append(checks, survey.Required)
	}
	switch spec.Type {
	case fields.TypeNumber:
		checks = append(checks, func(ans interface{}) error {
			s, _ := ans.(string)
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, ok := f.Number(s); !ok {
				return errNotInteger
			}
			return nil
		})
	case fields.TypeDate:
		checks = append(checks, func(ans interface{}) error {
			s, _ := ans.(string)
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, ok := f.Date(s); !ok {
				return fmt.Errorf("enter a date as %s", f.InputLayout)
			}
			return nil
		})
	}
	if len(checks) == 0 {
		return nil
	}
	return survey.ComposeValidators(checks...)
}
