package audit

import "strings"

// ActionResource holds the action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseFullMethod maps a full method such as /f3.catalog.v1.OrgService/ListLocations to
// {list_locations, org}. Command execution is refined to the command kind by the caller.
func ParseFullMethod(fullMethod string) ActionResource {
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	service := fullMethod[:slash]
	if dot := strings.LastIndex(service, "."); dot >= 0 {
		service = service[dot+1:]
	}
	service = strings.TrimPrefix(strings.TrimSuffix(service, "Service"), "/")
	if service == "" {
		service = "unknown"
	}
	return ActionResource{Action: snake(method), Resource: snake(service)}
}

// snake converts CamelCase to snake_case.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
