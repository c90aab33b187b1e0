package transcode_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/binary"
	"github.com/lk2023060901/gosave/pkg/serial/jsonformat"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
	"github.com/lk2023060901/gosave/pkg/serial/transcode"
)

func name(s string) serial.Name { return serial.NewName(s) }

type TranscodeSuite struct {
	suite.Suite
}

func TestTranscodeSuite(t *testing.T) {
	suite.Run(t, new(TranscodeSuite))
}

// Scenario 6: JSON {n:12, arr:[1,2,3], obj:{k:true}} -> binary -> JSON.
func (s *TranscodeSuite) TestJSONToBinaryToJSON() {
	node, err := jsonformat.Parse(`{"n":12,"arr":[1,2,3],"obj":{"k":true}}`)
	s.Require().NoError(err)
	jr := jsonformat.NewReader(&node)

	c := binary.NewContainer()
	bw := binary.NewWriter(c)
	s.Require().NoError(transcode.FromJSON(jr, bw))
	bw.Finish()

	br := binary.NewReader(c)
	jw := jsonformat.NewWriter()
	s.Require().NoError(transcode.FromBinary(br, jw))

	raw, err := jsonformat.Marshal(jw.Root())
	s.Require().NoError(err)
	roundNode, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	rr := jsonformat.NewReader(&roundNode)

	var n int32
	s.Require().NoError(rr.Int32(name("n"), &n))
	s.Equal(int32(12), n)

	arr := serialutil.NewDynamicArray([]int32(nil))
	s.Require().NoError(rr.Int32Array(name("arr"), arr))
	s.Equal([]int32{1, 2, 3}, arr.Values())

	var k bool
	s.Require().NoError(rr.Object(name("obj"), func(sub serial.Serializer) error {
		return sub.Bool(name("k"), &k)
	}))
	s.True(k)
}

func (s *TranscodeSuite) TestBinaryToJSONToBinary() {
	c := binary.NewContainer()
	bw := binary.NewWriter(c)
	n := int32(99)
	s.Require().NoError(bw.Int32(name("n"), &n))
	s.Require().NoError(bw.Object(name("obj"), func(sub serial.Serializer) error {
		f := float32(3.5)
		return sub.Float32(name("f"), &f)
	}))
	s.Require().NoError(bw.WriteObjectArray(name("items"), 2, func(sub serial.Serializer, i int) error {
		v := int32(i * 10)
		return sub.Int32(name("v"), &v)
	}))
	bw.Finish()

	br := binary.NewReader(c)
	jw := jsonformat.NewWriter()
	s.Require().NoError(transcode.FromBinary(br, jw))

	raw, err := jsonformat.Marshal(jw.Root())
	s.Require().NoError(err)
	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	jr := jsonformat.NewReader(&node)

	c2 := binary.NewContainer()
	bw2 := binary.NewWriter(c2)
	s.Require().NoError(transcode.FromJSON(jr, bw2))
	bw2.Finish()

	br2 := binary.NewReader(c2)
	var gotN int32
	s.Require().NoError(br2.Int32(name("n"), &gotN))
	s.Equal(int32(99), gotN)

	var gotF float32
	s.Require().NoError(br2.Object(name("obj"), func(sub serial.Serializer) error {
		return sub.Float32(name("f"), &gotF)
	}))
	s.InDelta(float64(3.5), float64(gotF), 1e-6)

	count, ok := br2.ObjectArraySize(name("items"))
	s.Require().True(ok)
	s.Equal(2, count)
	var got []int32
	s.Require().NoError(br2.ReadObjectArray(name("items"), func(sub serial.Serializer, i int) error {
		var v int32
		s.Require().NoError(sub.Int32(name("v"), &v))
		got = append(got, v)
		return nil
	}))
	s.Equal([]int32{0, 10}, got)
}

func (s *TranscodeSuite) TestBatchTranscodeRunsAllJobs() {
	results := make([]bool, 5)
	jobs := make([]transcode.Job, 5)
	for i := 0; i < 5; i++ {
		i := i
		jobs[i] = transcode.Job{
			Name: "job",
			Run: func(ctx context.Context) error {
				results[i] = true
				return nil
			},
		}
	}
	errs := transcode.BatchTranscode(context.Background(), jobs, 2)
	s.Empty(errs)
	for _, done := range results {
		s.True(done)
	}
}

func (s *TranscodeSuite) TestBatchTranscodeCollectsErrors() {
	jobs := []transcode.Job{
		{Name: "ok", Run: func(ctx context.Context) error { return nil }},
		{Name: "fail", Run: func(ctx context.Context) error { return assertErr }},
	}
	errs := transcode.BatchTranscode(context.Background(), jobs, 2)
	s.Len(errs, 1)
	s.ErrorIs(errs[0], assertErr)
}

var assertErr = &sentinelErr{"boom"}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }
