package msg

// MsgKind is the closed enumeration of payload tags. Kinds are appended,
// never renumbered, so the value is stable across a protocol version.
type MsgKind uint16

const (
	KindNone MsgKind = iota
	KindSubRequest
	KindSubList
	KindSetTimeCmd
	KindReinitApp

	KindExampleHk
	KindExampleOutData
	KindExampleCmd

	KindDsHk
	KindDsOutData
	KindDsCmd

	KindHsHk
	KindHsOutData
	KindHsCmd

	KindToHk
	KindToOutData
	KindToCmd

	KindRawFrame
)

var kindNames = map[MsgKind]string{
	KindNone:           "none",
	KindSubRequest:     "sub_request",
	KindSubList:        "sub_list",
	KindSetTimeCmd:     "set_time_cmd",
	KindReinitApp:      "reinit_app",
	KindExampleHk:      "example_hk",
	KindExampleOutData: "example_out_data",
	KindExampleCmd:     "example_cmd",
	KindDsHk:           "ds_hk",
	KindDsOutData:      "ds_out_data",
	KindDsCmd:          "ds_cmd",
	KindHsHk:           "hs_hk",
	KindHsOutData:      "hs_out_data",
	KindHsCmd:          "hs_cmd",
	KindToHk:           "to_hk",
	KindToOutData:      "to_out_data",
	KindToCmd:          "to_cmd",
	KindRawFrame:       "raw_frame",
}

func (k MsgKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind looks up a MsgKind by its String() name, for config files
// that name kinds rather than encoding the numeric tag directly.
func ParseKind(name string) (MsgKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
