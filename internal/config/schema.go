package config

import (
	"fmt"
	"strings"
)

func (c *ServerlessConfig) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("field 'service' is required")
	}

	if !isValidServiceName(c.Service) {
		return fmt.Errorf("service name '%s' is invalid. Only alphanumeric and hyphens allowed", c.Service)
	}

	if c.Stage == "" {
		return fmt.Errorf("field 'stage' is required")
	}

	if len(c.Functions) == 0 {
		return fmt.Errorf("at least one function must be defined")
	}

	for funcName, function := range c.Functions {
		if function == nil {
			return fmt.Errorf("function '%s' has no body", funcName)
		}
		if err := function.Validate(funcName); err != nil {
			return err
		}
		if c.EffectiveRuntime(function) == "" {
			return fmt.Errorf("runtime is required for function '%s' (set it on the function or at service level)", funcName)
		}
	}

	return nil
}

func (f *LambdaFunc) Validate(funcName string) error {
	if f.FunctionName == "" {
		return fmt.Errorf("functionName is required for function '%s'", funcName)
	}

	if f.Handler == "" {
		return fmt.Errorf("handler is required for function '%s'", funcName)
	}

	if f.Code == "" {
		return fmt.Errorf("code is required for function '%s'", funcName)
	}

	// MemorySize y Timeout son opcionales: en cero aplica el default del
	// proveedor. Si vienen seteados deben caer en el rango de Lambda.
	if f.MemorySize != 0 && (f.MemorySize < 128 || f.MemorySize > 10240) {
		return fmt.Errorf("memorySize must be between 128 and 10240 for function '%s'", funcName)
	}

	if f.Timeout != 0 && (f.Timeout < 1 || f.Timeout > 900) {
		return fmt.Errorf("timeout must be between 1 and 900 seconds for function '%s'", funcName)
	}

	for i, event := range f.Events {
		if err := event.Validate(funcName, i); err != nil {
			return err
		}
	}

	return nil
}

func (e *LambdaEvent) Validate(funcName string, index int) error {
	if e.Type == "" {
		return fmt.Errorf("event type is required for event %d in function '%s'", index, funcName)
	}

	// Validaciones específicas por tipo de evento
	switch strings.ToLower(e.Type) {
	case "http":
		if e.Path == "" {
			return fmt.Errorf("path is required for HTTP events in function '%s'", funcName)
		}
		if e.Method == "" {
			return fmt.Errorf("method is required for HTTP events in function '%s'", funcName)
		}
		// Puedes agregar más validaciones para otros tipos de eventos
	}

	return nil
}
