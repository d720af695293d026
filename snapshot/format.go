package snapshot

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/homeostat"
)

const (
	magic         uint32 = 0xBEEF2024
	formatVersion uint32 = 1
)

// State bundles every piece of core-external state a snapshot must carry
// alongside the arena itself: the tick counter, the fourteen adaptive
// parameters, the learner's energy/mean_surprise, the opaque PRNG state,
// and the per-destination activation baseline (spec.md §6.3's "global
// baselines").
type State struct {
	Tick         uint64
	Homeostat    homeostat.Params
	Energy       float64
	MeanSurprise float64
	PRNGState    []byte
	Baseline     map[core.VertexID]float64
}

func encode(a *core.Arena, st State) []byte {
	vertices := a.ExportVertices()
	edges := a.ExportEdges()
	stats := a.Stats()

	var buf bytes.Buffer
	writeUint32(&buf, magic)
	writeUint32(&buf, formatVersion)
	writeUint64(&buf, st.Tick)
	writeUint32(&buf, uint32(len(vertices)))
	writeUint32(&buf, stats.LiveVertices)
	writeUint32(&buf, uint32(len(edges)))
	writeUint32(&buf, stats.LiveEdges)
	writeUint32(&buf, uint32(a.VertexFreeHead()))
	writeUint32(&buf, uint32(a.EdgeFreeHead()))
	writeFloat64(&buf, a.WeightMax())

	writeUint32(&buf, uint32(len(st.PRNGState)))
	buf.Write(st.PRNGState)

	writeParams(&buf, st.Homeostat)
	writeFloat32(&buf, float32(st.Energy))
	writeFloat64(&buf, st.MeanSurprise)

	writeBaseline(&buf, st.Baseline)

	for _, vr := range vertices {
		writeVertexRecord(&buf, vr)
	}
	for _, er := range edges {
		writeEdgeRecord(&buf, er)
	}

	return buf.Bytes()
}

// decoded is everything decode extracts from a payload before the caller
// turns it into a live core.Arena via core.RestoreArena.
type decoded struct {
	restore core.RestoreParams
	state   State
}

func decode(payload []byte) (decoded, error) {
	r := bytes.NewReader(payload)
	var d decoded

	gotMagic, err := readUint32(r)
	if err != nil || gotMagic != magic {
		return d, ErrCorrupt
	}
	gotVersion, err := readUint32(r)
	if err != nil || gotVersion != formatVersion {
		return d, ErrCorrupt
	}

	tick, err := readUint64(r)
	vertexCap, err2 := readUint32(r)
	liveVertices, err3 := readUint32(r)
	edgeCap, err4 := readUint32(r)
	liveEdges, err5 := readUint32(r)
	vertexFreeHead, err6 := readUint32(r)
	edgeFreeHead, err7 := readUint32(r)
	weightMax, err8 := readFloat64(r)
	if anyErr(err, err2, err3, err4, err5, err6, err7, err8) {
		return d, ErrCorrupt
	}

	prngLen, err := readUint32(r)
	if err != nil {
		return d, ErrCorrupt
	}
	prngState := make([]byte, prngLen)
	if _, err := io.ReadFull(r, prngState); err != nil {
		return d, ErrCorrupt
	}

	params, err := readParams(r)
	if err != nil {
		return d, ErrCorrupt
	}
	energy32, err1 := readFloat32(r)
	meanSurprise, err2b := readFloat64(r)
	if anyErr(err1, err2b) {
		return d, ErrCorrupt
	}
	energy := float64(energy32)

	baseline, err := readBaseline(r)
	if err != nil {
		return d, ErrCorrupt
	}

	vertices := make([]core.VertexRecord, vertexCap)
	for i := range vertices {
		vr, err := readVertexRecord(r)
		if err != nil {
			return d, ErrCorrupt
		}
		vertices[i] = vr
	}
	edges := make([]core.EdgeRecord, edgeCap)
	for i := range edges {
		er, err := readEdgeRecord(r)
		if err != nil {
			return d, ErrCorrupt
		}
		edges[i] = er
	}

	d.restore = core.RestoreParams{
		WeightMax:      weightMax,
		Vertices:       vertices,
		Edges:          edges,
		VertexFreeHead: core.VertexID(vertexFreeHead),
		EdgeFreeHead:   core.EdgeSlot(edgeFreeHead),
		LiveVertices:   liveVertices,
		LiveEdges:      liveEdges,
	}
	d.state = State{
		Tick:         tick,
		Homeostat:    params,
		Energy:       energy,
		MeanSurprise: meanSurprise,
		PRNGState:    prngState,
		Baseline:     baseline,
	}
	return d, nil
}

func anyErr(errs ...error) bool {
	for _, e := range errs {
		if e != nil {
			return true
		}
	}
	return false
}

func writeParams(buf *bytes.Buffer, p homeostat.Params) {
	writeFloat32(buf, float32(p.PruneRate))
	writeFloat32(buf, float32(p.CreateRate))
	writeFloat32(buf, float32(p.ActivationScale))
	writeFloat32(buf, float32(p.EnergyAlpha))
	writeFloat32(buf, float32(p.EnergyDecay))
	writeFloat32(buf, float32(p.SigmoidK))
	writeFloat32(buf, float32(p.EpsilonMax))
	writeFloat32(buf, float32(p.EpsilonMin))
	writeFloat32(buf, float32(p.LayerRate))
	writeUint32(buf, uint32(p.MaxThoughtHops))
	writeFloat32(buf, float32(p.StabilityEps))
	writeFloat32(buf, float32(p.ActivationEps))
	writeFloat32(buf, float32(p.TemporalDecay))
	writeFloat32(buf, float32(p.SpatialK))
	writeFloat32(buf, float32(p.ActivationFloor))
}

func readParams(r *bytes.Reader) (homeostat.Params, error) {
	var p homeostat.Params
	var (
		pruneRate, createRate, activationScale, energyAlpha, energyDecay float32
		sigmoidK, epsilonMax, epsilonMin, layerRate                      float32
		stabilityEps, activationEps, temporalDecay, spatialK, actFloor   float32
		maxHops                                                         uint32
	)
	readInto := func(dst *float32) error {
		v, err := readFloat32(r)
		*dst = v
		return err
	}
	if err := readInto(&pruneRate); err != nil {
		return p, err
	}
	if err := readInto(&createRate); err != nil {
		return p, err
	}
	if err := readInto(&activationScale); err != nil {
		return p, err
	}
	if err := readInto(&energyAlpha); err != nil {
		return p, err
	}
	if err := readInto(&energyDecay); err != nil {
		return p, err
	}
	if err := readInto(&sigmoidK); err != nil {
		return p, err
	}
	if err := readInto(&epsilonMax); err != nil {
		return p, err
	}
	if err := readInto(&epsilonMin); err != nil {
		return p, err
	}
	if err := readInto(&layerRate); err != nil {
		return p, err
	}
	var err error
	maxHops, err = readUint32(r)
	if err != nil {
		return p, err
	}
	if err := readInto(&stabilityEps); err != nil {
		return p, err
	}
	if err := readInto(&activationEps); err != nil {
		return p, err
	}
	if err := readInto(&temporalDecay); err != nil {
		return p, err
	}
	if err := readInto(&spatialK); err != nil {
		return p, err
	}
	if err := readInto(&actFloor); err != nil {
		return p, err
	}

	p = homeostat.Params{
		PruneRate:       float64(pruneRate),
		CreateRate:      float64(createRate),
		ActivationScale: float64(activationScale),
		EnergyAlpha:     float64(energyAlpha),
		EnergyDecay:     float64(energyDecay),
		SigmoidK:        float64(sigmoidK),
		EpsilonMax:      float64(epsilonMax),
		EpsilonMin:      float64(epsilonMin),
		LayerRate:       float64(layerRate),
		MaxThoughtHops:  int(maxHops),
		StabilityEps:    float64(stabilityEps),
		ActivationEps:   float64(activationEps),
		TemporalDecay:   float64(temporalDecay),
		SpatialK:        float64(spatialK),
		ActivationFloor: float64(actFloor),
	}
	return p, nil
}

func writeBaseline(buf *bytes.Buffer, m map[core.VertexID]float64) {
	ids := make([]core.VertexID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	writeUint32(buf, uint32(len(ids)))
	for _, id := range ids {
		writeUint32(buf, uint32(id))
		writeFloat64(buf, m[id])
	}
}

func readBaseline(r *bytes.Reader) (map[core.VertexID]float64, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m := make(map[core.VertexID]float64, n)
	for i := uint32(0); i < n; i++ {
		id, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		m[core.VertexID(id)] = v
	}
	return m, nil
}

func writeVertexRecord(buf *bytes.Buffer, vr core.VertexRecord) {
	writeUint32(buf, uint32(vr.ID))
	writeFloat64(buf, vr.Activation)
	writeFloat64(buf, vr.PrevActivation)
	writeFloat64(buf, vr.Theta)
	writeFloat64(buf, vr.Soma)
	writeFloat64(buf, vr.Predicted)
	writeUint32(buf, vr.InDegree)
	writeUint32(buf, vr.OutDegree)
	writeUint64(buf, vr.LastActiveTick)
	buf.WriteByte(byte(vr.Flags))
	writeUint32(buf, vr.Signature)
	writeUint32(buf, vr.ClusterID)
	writeBool(buf, vr.Live)
	writeUint32(buf, uint32(vr.NextFree))
}

func readVertexRecord(r *bytes.Reader) (core.VertexRecord, error) {
	var vr core.VertexRecord
	id, err := readUint32(r)
	activation, err2 := readFloat64(r)
	prevActivation, err3 := readFloat64(r)
	theta, err4 := readFloat64(r)
	soma, err5 := readFloat64(r)
	predicted, err6 := readFloat64(r)
	inDegree, err7 := readUint32(r)
	outDegree, err8 := readUint32(r)
	lastActiveTick, err9 := readUint64(r)
	flagByte, err10 := r.ReadByte()
	signature, err11 := readUint32(r)
	clusterID, err12 := readUint32(r)
	live, err13 := readBool(r)
	nextFree, err14 := readUint32(r)
	if anyErr(err, err2, err3, err4, err5, err6, err7, err8, err9, err10, err11, err12, err13, err14) {
		return vr, io.ErrUnexpectedEOF
	}

	vr.Vertex = core.Vertex{
		ID:             core.VertexID(id),
		Activation:     activation,
		PrevActivation: prevActivation,
		Theta:          theta,
		Soma:           soma,
		Predicted:      predicted,
		InDegree:       inDegree,
		OutDegree:      outDegree,
		LastActiveTick: lastActiveTick,
		Flags:          core.VertexFlags(flagByte),
		Signature:      signature,
		ClusterID:      clusterID,
	}
	vr.Live = live
	vr.NextFree = core.VertexID(nextFree)
	return vr, nil
}

func writeEdgeRecord(buf *bytes.Buffer, er core.EdgeRecord) {
	writeUint32(buf, uint32(er.Src))
	writeUint32(buf, uint32(er.Dst))
	writeFloat64(buf, er.WFast)
	writeFloat64(buf, er.WSlow)
	writeFloat64(buf, er.Credit)
	writeUint64(buf, er.UseCount)
	writeUint64(buf, er.StaleTicks)
	writeFloat64(buf, er.Eligibility)
	writeFloat64(buf, er.C11)
	writeFloat64(buf, er.C10)
	writeFloat64(buf, er.AvgU)
	writeBool(buf, er.Live)
	writeUint32(buf, uint32(er.NextFree))
}

func readEdgeRecord(r *bytes.Reader) (core.EdgeRecord, error) {
	var er core.EdgeRecord
	src, err := readUint32(r)
	dst, err2 := readUint32(r)
	wFast, err3 := readFloat64(r)
	wSlow, err4 := readFloat64(r)
	credit, err5 := readFloat64(r)
	useCount, err6 := readUint64(r)
	staleTicks, err7 := readUint64(r)
	eligibility, err8 := readFloat64(r)
	c11, err9 := readFloat64(r)
	c10, err10 := readFloat64(r)
	avgU, err11 := readFloat64(r)
	live, err12 := readBool(r)
	nextFree, err13 := readUint32(r)
	if anyErr(err, err2, err3, err4, err5, err6, err7, err8, err9, err10, err11, err12, err13) {
		return er, io.ErrUnexpectedEOF
	}

	er.Edge = core.Edge{
		Src:         core.VertexID(src),
		Dst:         core.VertexID(dst),
		WFast:       wFast,
		WSlow:       wSlow,
		Credit:      credit,
		UseCount:    useCount,
		StaleTicks:  staleTicks,
		Eligibility: eligibility,
		C11:         c11,
		C10:         c10,
		AvgU:        avgU,
	}
	er.Live = live
	er.NextFree = core.EdgeSlot(nextFree)
	return er, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	writeUint64(buf, math.Float64bits(v))
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	writeUint32(buf, math.Float32bits(v))
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}

func readFloat64(r *bytes.Reader) (float64, error) {
	u, err := readUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func readFloat32(r *bytes.Reader) (float32, error) {
	u, err := readUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}
