package mavlink

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/bluenviron/gomavlib/v3/pkg/message"
)

var nameCache sync.Map // reflect.Type -> string

// MessageName returns the MAVLink name of msg, e.g. "OPTICAL_FLOW_RAD" for a
// *common.MessageOpticalFlowRad. Messages the dialect could not decode are
// named "UNKNOWN_<id>".
func MessageName(msg message.Message) string {
	if msg == nil {
		return ""
	}

	if raw, ok := msg.(*message.MessageRaw); ok {
		return fmt.Sprintf("UNKNOWN_%d", raw.ID)
	}

	t := reflect.TypeOf(msg)
	if cached, ok := nameCache.Load(t); ok {
		return cached.(string)
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	name := upperSnake(strings.TrimPrefix(t.Name(), "Message"))
	nameCache.Store(reflect.TypeOf(msg), name)

	return name
}

// upperSnake converts the camel case used by gomavlib type names back into
// MAVLink's UPPER_SNAKE names: "GpsRawInt" -> "GPS_RAW_INT",
// "Gps2Raw" -> "GPS2_RAW", "ScaledImu2" -> "SCALED_IMU2".
func upperSnake(s string) string {
	sb := &strings.Builder{}
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				sb.WriteRune('_')
			}
		}

		sb.WriteRune(unicode.ToUpper(r))
	}

	return sb.String()
}
