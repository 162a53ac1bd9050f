package oracle

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/vxh357/ColabDesign/gen/oraclepb"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region client

// Remote implements Oracle against an out-of-process prediction service.
type Remote struct {
	conn   *grpc.ClientConn
	client pb.OracleServiceClient
}

// NewRemote connects to the prediction gRPC server.
func NewRemote(addr string) (*Remote, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Remote{
		conn:   conn,
		client: pb.NewOracleServiceClient(conn),
	}, nil
}

// NewRemoteWithService creates a Remote with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewRemoteWithService(svc pb.OracleServiceClient) *Remote {
	return &Remote{client: svc}
}

// Close shuts down the gRPC connection.
func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// #endregion client

// #region rpcs

// Info implements Oracle.
func (r *Remote) Info(ctx context.Context) (Info, error) {
	resp, err := r.client.Describe(ctx, &pb.DescribeRequest{})
	if err != nil {
		return Info{}, fmt.Errorf("describe rpc: %w", err)
	}
	return Info{
		Name:          resp.Name,
		Replicas:      int(resp.Replicas),
		FixedRecycles: int(resp.FixedRecycles),
		HasStructure:  resp.HasStructure,
	}, nil
}

// Evaluate implements Oracle.
func (r *Remote) Evaluate(ctx context.Context, req EvalRequest) (EvalResult, error) {
	resp, err := r.client.Evaluate(ctx, &pb.EvaluateRequest{
		Seq:          logitsToPB(req.Seq),
		Prev:         recycleToPB(req.Prev),
		Options:      optionsToPB(req.Options),
		Replica:      int32(req.Replica),
		Key:          req.Key,
		WantGradient: req.WantGradient,
	})
	if err != nil {
		return EvalResult{}, fmt.Errorf("evaluate rpc: %w", err)
	}
	return resultFromPB(resp, req.Seq)
}

// #endregion rpcs

// #region conversion

func logitsToPB(x seq.Logits) *pb.Tensor {
	if x.Data == nil {
		return nil
	}
	return &pb.Tensor{
		Shape: []int32{int32(x.Seqs), int32(x.Length), int32(x.Alphabet)},
		Data:  append([]float32(nil), x.Data...),
	}
}

func logitsFromPB(t *pb.Tensor) (seq.Logits, error) {
	if t == nil {
		return seq.Logits{}, fmt.Errorf("missing tensor")
	}
	if len(t.Shape) != 3 {
		return seq.Logits{}, fmt.Errorf("tensor rank %d, want 3", len(t.Shape))
	}
	s, l, a := int(t.Shape[0]), int(t.Shape[1]), int(t.Shape[2])
	if s < 1 || l < 1 || a < 1 || s*l*a != len(t.Data) {
		return seq.Logits{}, fmt.Errorf("tensor shape (%d,%d,%d) does not match %d values", s, l, a, len(t.Data))
	}
	out := seq.NewLogits(s, l, a)
	copy(out.Data, t.Data)
	return out, nil
}

// An all-zero bias is omitted from the wire form; the oracle treats a
// missing bias and a zero bias identically.
func biasToPB(b seq.Bias) *pb.Tensor {
	if b.Data == nil || b.IsZero() {
		return nil
	}
	return &pb.Tensor{
		Shape: []int32{int32(b.Length), int32(b.Alphabet)},
		Data:  append([]float32(nil), b.Data...),
	}
}

func optionsToPB(o Options) *pb.EvalOptions {
	opts := &pb.EvalOptions{
		Temp:            o.Temp,
		Soft:            o.Soft,
		Hard:            o.Hard,
		Dropout:         o.Dropout,
		Gumbel:          o.Gumbel,
		Recycles:        int32(o.Recycles),
		TemplateDropout: o.TemplateDropout,
		Bias:            biasToPB(o.Bias),
	}
	// sorted entries keep the wire form deterministic
	for _, name := range o.WeightNames() {
		opts.Weights = append(opts.Weights, &pb.WeightEntry{Name: name, Value: o.Weights[name]})
	}
	for _, p := range o.Pos {
		opts.Pos = append(opts.Pos, int32(p))
	}
	return opts
}

func recycleToPB(st RecycleState) *pb.RecycleState {
	if st.MSAFirstRow == nil {
		return nil
	}
	return &pb.RecycleState{
		Len:         int32(st.Len),
		MsaFirstRow: st.MSAFirstRow,
		Pair:        st.Pair,
		Pos:         st.Pos,
		Distogram:   st.Distogram,
	}
}

func recycleFromPB(st *pb.RecycleState) RecycleState {
	if st == nil {
		return RecycleState{}
	}
	return RecycleState{
		Len:         int(st.Len),
		MSAFirstRow: st.MsaFirstRow,
		Pair:        st.Pair,
		Pos:         st.Pos,
		Distogram:   st.Distogram,
	}
}

func resultFromPB(resp *pb.EvaluateResponse, x seq.Logits) (EvalResult, error) {
	res := EvalResult{Loss: resp.Loss}
	aux := Aux{
		Losses:   make(map[string]float64, len(resp.Losses)),
		Recycles: int(resp.Recycles),
		Coords:   resp.Coords,
		PLDDT:    resp.Plddt,
		PAE:      resp.Pae,
		Contacts: resp.Contacts,
		Prev:     recycleFromPB(resp.Prev),
	}
	for _, e := range resp.Losses {
		aux.Losses[e.Name] = e.Value
	}
	if resp.SeqHard != nil {
		hard, err := logitsFromPB(resp.SeqHard)
		if err != nil {
			return EvalResult{}, fmt.Errorf("seq_hard: %w", err)
		}
		aux.SeqHard = hard
	}
	if resp.SeqPseudo != nil {
		pseudo, err := logitsFromPB(resp.SeqPseudo)
		if err != nil {
			return EvalResult{}, fmt.Errorf("seq_pseudo: %w", err)
		}
		aux.SeqPseudo = pseudo
	}
	res.Aux = aux
	if resp.Gradient != nil {
		grad, err := logitsFromPB(resp.Gradient)
		if err != nil {
			return EvalResult{}, fmt.Errorf("gradient: %w", err)
		}
		if !grad.ShapeEquals(x) {
			return EvalResult{}, fmt.Errorf("gradient shape (%d,%d,%d) does not match sequence (%d,%d,%d)",
				grad.Seqs, grad.Length, grad.Alphabet, x.Seqs, x.Length, x.Alphabet)
		}
		res.Gradient = grad
	}
	return res, nil
}

// #endregion conversion
