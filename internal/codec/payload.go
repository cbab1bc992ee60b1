package codec

import "github.com/jcweaver997/rfe/internal/msg"

func encodeTargetMsg(buf []byte, t msg.TargetMsg) []byte {
	buf = putUvarint(buf, uint64(t.Instance))
	return putUvarint(buf, uint64(t.Kind))
}

func takeTargetMsg(data []byte) (msg.TargetMsg, int, error) {
	inst, n, err := takeUvarint(data)
	if err != nil {
		return msg.TargetMsg{}, 0, err
	}
	total := n
	kind, n, err := takeUvarint(data[total:])
	if err != nil {
		return msg.TargetMsg{}, 0, err
	}
	total += n
	return msg.TargetMsg{Instance: msg.Instance(inst), Kind: msg.MsgKind(kind)}, total, nil
}

func encodeTlmSetItem(buf []byte, it msg.TlmSetItem) []byte {
	buf = encodeTargetMsg(buf, it.Target)
	buf = putUvarint(buf, uint64(it.Decimation))
	return putUvarint(buf, uint64(it.Counter))
}

func takeTlmSetItem(data []byte) (msg.TlmSetItem, int, error) {
	target, n, err := takeTargetMsg(data)
	if err != nil {
		return msg.TlmSetItem{}, 0, err
	}
	total := n
	dec, n, err := takeUvarint(data[total:])
	if err != nil {
		return msg.TlmSetItem{}, 0, err
	}
	total += n
	cnt, n, err := takeUvarint(data[total:])
	if err != nil {
		return msg.TlmSetItem{}, 0, err
	}
	total += n
	return msg.TlmSetItem{Target: target, Decimation: uint16(dec), Counter: uint16(cnt)}, total, nil
}

func encodeItems(buf []byte, items []msg.TlmSetItem) []byte {
	buf = putUvarint(buf, uint64(len(items)))
	for _, it := range items {
		buf = encodeTlmSetItem(buf, it)
	}
	return buf
}

func takeItems(data []byte) ([]msg.TlmSetItem, int, error) {
	count, n, err := takeUvarint(data)
	if err != nil {
		return nil, 0, err
	}
	total := n
	items := make([]msg.TlmSetItem, 0, count)
	for i := uint64(0); i < count; i++ {
		it, m, err := takeTlmSetItem(data[total:])
		if err != nil {
			return nil, 0, err
		}
		total += m
		items = append(items, it)
	}
	return items, total, nil
}

func encodePerf(buf []byte, p msg.PerfData) []byte {
	buf = putUvarint(buf, p.EnterTime)
	buf = putUvarint(buf, uint64(p.Elapsed))
	return putUvarint(buf, uint64(p.Rate))
}

func takePerf(data []byte) (msg.PerfData, int, error) {
	enter, n, err := takeUvarint(data)
	if err != nil {
		return msg.PerfData{}, 0, err
	}
	total := n
	elapsed, n, err := takeUvarint(data[total:])
	if err != nil {
		return msg.PerfData{}, 0, err
	}
	total += n
	rate, n, err := takeUvarint(data[total:])
	if err != nil {
		return msg.PerfData{}, 0, err
	}
	total += n
	return msg.PerfData{EnterTime: enter, Elapsed: uint32(elapsed), Rate: uint32(rate)}, total, nil
}

func encodeBool(buf []byte, b bool) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func takeBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, ErrShortBuffer
	}
	return data[0] != 0, 1, nil
}

// encodePayload dispatches on the static Go type, mirroring Kind()'s
// purity: it never looks at anything but which concrete type m is.
func encodePayload(m msg.Msg) ([]byte, error) {
	switch v := m.(type) {
	case msg.MsgNone:
		return nil, nil
	case msg.MsgSubRequest:
		return nil, nil
	case msg.MsgSubList:
		return encodeItemTargets(v.Subs), nil
	case msg.MsgSetTimeCmd:
		return putUvarint(nil, v.EpochMicros), nil
	case msg.MsgReinitApp:
		return putBytes(nil, []byte(v.Name)), nil

	case msg.ExampleHk:
		return encodePerf(putUvarint(nil, uint64(v.Counter)), v.Perf), nil
	case msg.ExampleOutData:
		return putUvarint(nil, uint64(v.Counter)), nil
	case msg.ExampleCmd:
		return []byte{byte(v.Op)}, nil

	case msg.DsHk:
		return encodePerf(putUvarint(nil, uint64(v.Counter)), v.Perf), nil
	case msg.DsOutData:
		buf := putUvarint(nil, uint64(v.Counter))
		buf = putUvarint(buf, uint64(v.BytesWritten))
		buf = putUvarint(buf, uint64(v.BytesWrittenThisCycle))
		return buf, nil
	case msg.DsCmd:
		return encodeDsCmd(v), nil

	case msg.HsHk:
		return encodeHsHk(v), nil
	case msg.HsOutData:
		return putUvarint(nil, uint64(v.Counter)), nil
	case msg.HsCmd:
		buf := []byte{byte(v.Op)}
		return encodeBool(buf, v.BoolArg), nil

	case msg.ToHk:
		return encodePerf(putUvarint(nil, uint64(v.Counter)), v.Perf), nil
	case msg.ToOutData:
		return putUvarint(nil, uint64(v.Counter)), nil
	case msg.ToCmd:
		return encodeToCmd(v), nil

	case msg.RawFrame:
		return []byte(v), nil

	default:
		return nil, ErrMalformed
	}
}

func encodeItemTargets(subs []msg.TargetMsg) []byte {
	buf := putUvarint(nil, uint64(len(subs)))
	for _, t := range subs {
		buf = encodeTargetMsg(buf, t)
	}
	return buf
}

func encodeDsTlmSet(s msg.DsTlmSet) []byte {
	buf := putUvarint(nil, uint64(s.ID))
	buf = encodeBool(buf, s.Enabled)
	buf = encodeItems(buf, s.Items)
	return putBytes(buf, []byte(s.Path))
}

func takeDsTlmSet(data []byte) (msg.DsTlmSet, int, error) {
	id, n, err := takeUvarint(data)
	if err != nil {
		return msg.DsTlmSet{}, 0, err
	}
	total := n
	enabled, n, err := takeBool(data[total:])
	if err != nil {
		return msg.DsTlmSet{}, 0, err
	}
	total += n
	items, n, err := takeItems(data[total:])
	if err != nil {
		return msg.DsTlmSet{}, 0, err
	}
	total += n
	path, n, err := takeBytes(data[total:])
	if err != nil {
		return msg.DsTlmSet{}, 0, err
	}
	total += n
	return msg.DsTlmSet{ID: msg.TlmSetId(id), Enabled: enabled, Items: items, Path: string(path)}, total, nil
}

func encodeDsCmd(c msg.DsCmd) []byte {
	buf := []byte{byte(c.Op)}
	switch c.Op {
	case msg.DsCmdClose:
		buf = putUvarint(buf, uint64(c.CloseID))
	case msg.DsCmdAddTlmSet:
		buf = append(buf, encodeDsTlmSet(c.TlmSet)...)
	case msg.DsCmdRemoveTlmSet, msg.DsCmdDisableTlmSet, msg.DsCmdEnableTlmSet:
		buf = putUvarint(buf, uint64(c.TlmSetID))
	}
	return buf
}

func takeDsCmd(data []byte) (msg.DsCmd, int, error) {
	if len(data) < 1 {
		return msg.DsCmd{}, 0, ErrShortBuffer
	}
	op := msg.DsCmdOp(data[0])
	total := 1
	cmd := msg.DsCmd{Op: op}
	switch op {
	case msg.DsCmdClose:
		v, n, err := takeUvarint(data[total:])
		if err != nil {
			return cmd, 0, err
		}
		cmd.CloseID = msg.TlmSetId(v)
		total += n
	case msg.DsCmdAddTlmSet:
		set, n, err := takeDsTlmSet(data[total:])
		if err != nil {
			return cmd, 0, err
		}
		cmd.TlmSet = set
		total += n
	case msg.DsCmdRemoveTlmSet, msg.DsCmdDisableTlmSet, msg.DsCmdEnableTlmSet:
		v, n, err := takeUvarint(data[total:])
		if err != nil {
			return cmd, 0, err
		}
		cmd.TlmSetID = msg.TlmSetId(v)
		total += n
	}
	return cmd, total, nil
}

func encodeToTlmSet(s msg.ToTlmSet) []byte {
	buf := putUvarint(nil, uint64(s.ID))
	buf = encodeBool(buf, s.Enabled)
	return encodeItems(buf, s.Items)
}

func takeToTlmSet(data []byte) (msg.ToTlmSet, int, error) {
	id, n, err := takeUvarint(data)
	if err != nil {
		return msg.ToTlmSet{}, 0, err
	}
	total := n
	enabled, n, err := takeBool(data[total:])
	if err != nil {
		return msg.ToTlmSet{}, 0, err
	}
	total += n
	items, n, err := takeItems(data[total:])
	if err != nil {
		return msg.ToTlmSet{}, 0, err
	}
	total += n
	return msg.ToTlmSet{ID: msg.TlmSetId(id), Enabled: enabled, Items: items}, total, nil
}

func encodeToCmd(c msg.ToCmd) []byte {
	buf := []byte{byte(c.Op)}
	switch c.Op {
	case msg.ToCmdAddTlmSet:
		buf = append(buf, encodeToTlmSet(c.TlmSet)...)
	case msg.ToCmdRemoveTlmSet, msg.ToCmdDisableTlmSet, msg.ToCmdEnableTlmSet:
		buf = putUvarint(buf, uint64(c.TlmSetID))
	}
	return buf
}

func takeToCmd(data []byte) (msg.ToCmd, int, error) {
	if len(data) < 1 {
		return msg.ToCmd{}, 0, ErrShortBuffer
	}
	op := msg.ToCmdOp(data[0])
	total := 1
	cmd := msg.ToCmd{Op: op}
	switch op {
	case msg.ToCmdAddTlmSet:
		set, n, err := takeToTlmSet(data[total:])
		if err != nil {
			return cmd, 0, err
		}
		cmd.TlmSet = set
		total += n
	case msg.ToCmdRemoveTlmSet, msg.ToCmdDisableTlmSet, msg.ToCmdEnableTlmSet:
		v, n, err := takeUvarint(data[total:])
		if err != nil {
			return cmd, 0, err
		}
		cmd.TlmSetID = msg.TlmSetId(v)
		total += n
	}
	return cmd, total, nil
}

func encodeHsHk(v msg.HsHk) []byte {
	buf := putUvarint(nil, uint64(v.Counter))
	buf = putBytes(buf, v.CPUUsage)
	buf = append(buf, v.MemUsage)
	buf = putBytes(buf, v.FsUsage)
	temps := make([]byte, len(v.Temps))
	for i, t := range v.Temps {
		temps[i] = byte(t)
	}
	buf = putBytes(buf, temps)
	buf = append(buf, v.CmdCounter)
	buf = encodeBool(buf, v.CPUUsageEnabled)
	buf = encodeBool(buf, v.MemUsageEnabled)
	buf = encodeBool(buf, v.FsUsageEnabled)
	return encodePerf(buf, v.Perf)
}

func takeHsHk(data []byte) (msg.HsHk, int, error) {
	var v msg.HsHk
	counter, n, err := takeUvarint(data)
	if err != nil {
		return v, 0, err
	}
	total := n
	v.Counter = uint32(counter)

	cpu, n, err := takeBytes(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.CPUUsage = append([]byte(nil), cpu...)

	if len(data) < total+1 {
		return v, 0, ErrShortBuffer
	}
	v.MemUsage = data[total]
	total++

	fs, n, err := takeBytes(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.FsUsage = append([]byte(nil), fs...)

	temps, n, err := takeBytes(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.Temps = make([]int8, len(temps))
	for i, b := range temps {
		v.Temps[i] = int8(b)
	}

	if len(data) < total+1 {
		return v, 0, ErrShortBuffer
	}
	v.CmdCounter = data[total]
	total++

	cpuEn, n, err := takeBool(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.CPUUsageEnabled = cpuEn

	memEn, n, err := takeBool(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.MemUsageEnabled = memEn

	fsEn, n, err := takeBool(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.FsUsageEnabled = fsEn

	perf, n, err := takePerf(data[total:])
	if err != nil {
		return v, 0, err
	}
	total += n
	v.Perf = perf

	return v, total, nil
}

func decodePayload(kind msg.MsgKind, data []byte) (msg.Msg, error) {
	switch kind {
	case msg.KindNone:
		return msg.MsgNone{}, nil
	case msg.KindSubRequest:
		return msg.MsgSubRequest{}, nil
	case msg.KindSubList:
		count, n, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		total := n
		subs := make([]msg.TargetMsg, 0, count)
		for i := uint64(0); i < count; i++ {
			t, m, err := takeTargetMsg(data[total:])
			if err != nil {
				return nil, err
			}
			total += m
			subs = append(subs, t)
		}
		return msg.MsgSubList{Subs: subs}, nil
	case msg.KindSetTimeCmd:
		v, _, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		return msg.MsgSetTimeCmd{EpochMicros: v}, nil
	case msg.KindReinitApp:
		name, _, err := takeBytes(data)
		if err != nil {
			return nil, err
		}
		return msg.MsgReinitApp{Name: string(name)}, nil

	case msg.KindExampleHk:
		counter, n, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		perf, _, err := takePerf(data[n:])
		if err != nil {
			return nil, err
		}
		return msg.ExampleHk{Counter: uint32(counter), Perf: perf}, nil
	case msg.KindExampleOutData:
		v, _, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		return msg.ExampleOutData{Counter: uint32(v)}, nil
	case msg.KindExampleCmd:
		if len(data) < 1 {
			return nil, ErrShortBuffer
		}
		return msg.ExampleCmd{Op: msg.ExampleCmdKind(data[0])}, nil

	case msg.KindDsHk:
		counter, n, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		perf, _, err := takePerf(data[n:])
		if err != nil {
			return nil, err
		}
		return msg.DsHk{Counter: uint32(counter), Perf: perf}, nil
	case msg.KindDsOutData:
		counter, n, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		total := n
		written, n, err := takeUvarint(data[total:])
		if err != nil {
			return nil, err
		}
		total += n
		cycle, _, err := takeUvarint(data[total:])
		if err != nil {
			return nil, err
		}
		return msg.DsOutData{Counter: uint32(counter), BytesWritten: uint32(written), BytesWrittenThisCycle: uint32(cycle)}, nil
	case msg.KindDsCmd:
		v, _, err := takeDsCmd(data)
		return v, err

	case msg.KindHsHk:
		v, _, err := takeHsHk(data)
		return v, err
	case msg.KindHsOutData:
		v, _, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		return msg.HsOutData{Counter: uint32(v)}, nil
	case msg.KindHsCmd:
		if len(data) < 1 {
			return nil, ErrShortBuffer
		}
		b, _, err := takeBool(data[1:])
		if err != nil {
			return nil, err
		}
		return msg.HsCmd{Op: msg.HsCmdOp(data[0]), BoolArg: b}, nil

	case msg.KindToHk:
		counter, n, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		perf, _, err := takePerf(data[n:])
		if err != nil {
			return nil, err
		}
		return msg.ToHk{Counter: uint32(counter), Perf: perf}, nil
	case msg.KindToOutData:
		v, _, err := takeUvarint(data)
		if err != nil {
			return nil, err
		}
		return msg.ToOutData{Counter: uint32(v)}, nil
	case msg.KindToCmd:
		v, _, err := takeToCmd(data)
		return v, err

	case msg.KindRawFrame:
		return msg.RawFrame(append([]byte(nil), data...)), nil

	default:
		return nil, ErrMalformed
	}
}
