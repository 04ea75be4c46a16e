// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/simplify"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// ErrLex is returned for a malformed token (bad character, unterminated
// string literal).
var ErrLex = errors.New("lexical error")

// ErrParse is returned for any syntactic or name-resolution error
// encountered while building a Kernel from a token stream.
var ErrParse = errors.New("parse error")

var elemTypes = map[string]types.Type{
	"f32":  types.Float32,
	"f64":  types.Float64,
	"i32":  types.Int32,
	"i64":  types.Int64,
	"u32":  types.Scalar(types.UInt, 32),
	"u64":  types.Scalar(types.UInt, 64),
	"bool": types.Bool1,
}

// Parse reads a single kernel declaration from src and returns its IR.
//
// The surface grammar is a small C-like notation:
//
//	kernel gemm(A: f32[64,512], B: f32[512,128]) -> (Y: f32[64,128]) {
//	  for m in 0..64 {
//	    for n in 0..128 {
//	      for k reduce in 0..512 {
//	        Y[m,n] = Y[m,n] + A[m,k] * B[k,n];
//	      }
//	    }
//	  }
//	}
//
// Inputs and outputs are declared once in the kernel header; every later
// reference to that name builds a new *ir.Var with the same Name, so two
// references to one tensor are distinct nodes. Loop indices are resolved
// differently: "for m in ..." introduces a fresh *ir.Index
// that every Y[m,...]/A[m,...] use within its block resolves to.
func Parse(src string) (*ir.Kernel, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}

	return p.parseKernel()
}

// Parser is a hand-rolled recursive-descent reader over a Lexer's token
// stream, with a single token of lookahead.
type Parser struct {
	lex *Lexer
	cur Token

	vars    map[string]*ir.Var
	indices []map[string]*ir.Index
}

func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.cur = tok

	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrParse, fmt.Sprintf(format, args...), p.cur.String())
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	if p.cur.Kind != kind {
		return Token{}, p.errorf("expected %s", what)
	}

	tok := p.cur
	if err := p.next(); err != nil {
		return Token{}, err
	}

	return tok, nil
}

func (p *Parser) expectIdentText(text string) error {
	if p.cur.Kind != TokIdent || p.cur.Text != text {
		return p.errorf("expected %q", text)
	}

	return p.next()
}

func (p *Parser) atIdentText(text string) bool {
	return p.cur.Kind == TokIdent && p.cur.Text == text
}

func (p *Parser) pushScope() {
	p.indices = append(p.indices, map[string]*ir.Index{})
}

func (p *Parser) popScope() {
	p.indices = p.indices[:len(p.indices)-1]
}

func (p *Parser) declareIndex(idx *ir.Index) error {
	top := p.indices[len(p.indices)-1]
	if _, exists := top[idx.Name]; exists {
		return p.errorf("index %q already declared in this scope", idx.Name)
	}

	top[idx.Name] = idx

	return nil
}

func (p *Parser) lookupIndex(name string) (*ir.Index, error) {
	for i := len(p.indices) - 1; i >= 0; i-- {
		if idx, ok := p.indices[i][name]; ok {
			return idx, nil
		}
	}

	return nil, p.errorf("undeclared loop index %q", name)
}

func (p *Parser) lookupVar(name string) (*ir.Var, error) {
	v, ok := p.vars[name]
	if !ok {
		return nil, p.errorf("undeclared tensor %q", name)
	}

	return v, nil
}

func (p *Parser) parseKernel() (*ir.Kernel, error) {
	if err := p.expectIdentText("kernel"); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(TokIdent, "kernel name")
	if err != nil {
		return nil, err
	}

	p.vars = map[string]*ir.Var{}

	inputs, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokArrow, "'->'"); err != nil {
		return nil, err
	}

	outputs, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	p.pushScope()
	defer p.popScope()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return ir.NewKernel(nameTok.Text, inputs, outputs, body, ir.CPU), nil
}

func (p *Parser) parseParamList() ([]*ir.Var, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}

	var params []*ir.Var

	for p.cur.Kind != TokRParen {
		if len(params) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}

		v, err := p.parseParam()
		if err != nil {
			return nil, err
		}

		if _, exists := p.vars[v.Name]; exists {
			return nil, p.errorf("tensor %q already declared", v.Name)
		}

		p.vars[v.Name] = v
		params = append(params, v)
	}

	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}

	return params, nil
}

func (p *Parser) parseParam() (*ir.Var, error) {
	nameTok, err := p.expect(TokIdent, "parameter name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokColon, "':'"); err != nil {
		return nil, err
	}

	elemTok, err := p.expect(TokIdent, "element type")
	if err != nil {
		return nil, err
	}

	ty, ok := elemTypes[elemTok.Text]
	if !ok {
		return nil, p.errorf("unknown element type %q", elemTok.Text)
	}

	if _, err := p.expect(TokLBracket, "'['"); err != nil {
		return nil, err
	}

	var shape []uint64

	for p.cur.Kind != TokRBracket {
		if len(shape) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}

		dimTok, err := p.expect(TokInt, "dimension extent")
		if err != nil {
			return nil, err
		}

		n, convErr := strconv.ParseUint(dimTok.Text, 10, 64)
		if convErr != nil {
			return nil, p.errorf("invalid dimension %q", dimTok.Text)
		}

		shape = append(shape, n)
	}

	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}

	axes := make([]ir.Expr, len(shape))
	for i, extent := range shape {
		axes[i] = ir.NewIndex(
			fmt.Sprintf("%s$%d", nameTok.Text, i),
			ir.NewDom(ir.NewIntImm(0, types.Int64), ir.NewIntImm(int64(extent), types.Int64)),
			ir.Unknown,
		)
	}

	v, vErr := ir.NewVar(nameTok.Text, axes, shape, ty)
	if vErr != nil {
		return nil, vErr
	}

	return v, nil
}

func (p *Parser) parseBlock() ([]ir.Stmt, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}

	var stmts []ir.Stmt

	for p.cur.Kind != TokRBrace {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}

	return stmts, nil
}

func (p *Parser) parseStmt() (ir.Stmt, error) {
	if p.atIdentText("for") {
		return p.parseFor()
	}

	if p.atIdentText("if") {
		return p.parseIf()
	}

	return p.parseMove()
}

func (p *Parser) parseFor() (ir.Stmt, error) {
	if err := p.expectIdentText("for"); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(TokIdent, "loop index name")
	if err != nil {
		return nil, err
	}

	kind := ir.Spatial
	if p.atIdentText("reduce") {
		kind = ir.Reduce

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if err := p.expectIdentText("in"); err != nil {
		return nil, err
	}

	begin, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokDotDot, "'..'"); err != nil {
		return nil, err
	}

	end, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	extent, err := simplify.Simplify(ir.NewBinary(ir.Sub, end, begin))
	if err != nil {
		return nil, err
	}

	idx := ir.NewIndex(nameTok.Text, ir.NewDom(begin, extent), kind)

	p.pushScope()

	if err := p.declareIndex(idx); err != nil {
		p.popScope()
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		p.popScope()
		return nil, err
	}

	p.popScope()

	return ir.NewLoopNest([]*ir.Index{idx}, body), nil
}

func (p *Parser) parseIf() (ir.Stmt, error) {
	if err := p.expectIdentText("if"); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	trueBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var falseCase ir.Stmt

	if p.atIdentText("else") {
		if err := p.next(); err != nil {
			return nil, err
		}

		falseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		falseCase = ir.NewLoopNest(nil, falseBlock)
	}

	return ir.NewIfThenElse(cond, ir.NewLoopNest(nil, trueBlock), falseCase), nil
}

func (p *Parser) parseMove() (ir.Stmt, error) {
	nameTok, err := p.expect(TokIdent, "tensor name")
	if err != nil {
		return nil, err
	}

	v, err := p.lookupVar(nameTok.Text)
	if err != nil {
		return nil, err
	}

	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}

	dst, err := ir.NewVar(v.Name, args, v.Shape, v.Ty)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokAssign, "'='"); err != nil {
		return nil, err
	}

	src, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokSemicolon, "';'"); err != nil {
		return nil, err
	}

	return ir.NewMove(dst, src, ir.MemToMem), nil
}

func (p *Parser) parseArgList() ([]ir.Expr, error) {
	if _, err := p.expect(TokLBracket, "'['"); err != nil {
		return nil, err
	}

	var args []ir.Expr

	for p.cur.Kind != TokRBracket {
		if len(args) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}

	return args, nil
}

// parseExpr is the precedence-climbing expression entry point:
// or < and < compare < addsub < muldiv < unary < primary.
func (p *Parser) parseExpr() (ir.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ir.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == TokPipePipe {
		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = ir.NewBinary(ir.Or, left, right)
	}

	return left, nil
}

func (p *Parser) parseAnd() (ir.Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == TokAmpAmp {
		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}

		left = ir.NewBinary(ir.And, left, right)
	}

	return left, nil
}

var compareOps = map[TokenKind]ir.CompareOp{
	TokLT: ir.LT,
	TokLE: ir.LE,
	TokEQ: ir.EQ,
	TokNE: ir.NE,
	TokGE: ir.GE,
	TokGT: ir.GT,
}

func (p *Parser) parseCompare() (ir.Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	if op, ok := compareOps[p.cur.Kind]; ok {
		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}

		return ir.NewCompare(op, left, right), nil
	}

	return left, nil
}

func (p *Parser) parseAddSub() (ir.Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == TokPlus || p.cur.Kind == TokMinus {
		op := ir.Add
		if p.cur.Kind == TokMinus {
			op = ir.Sub
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}

		left = ir.NewBinary(op, left, right)
	}

	return left, nil
}

var mulDivOps = map[TokenKind]ir.BinaryOp{
	TokStar:           ir.Mul,
	TokSlash:          ir.Div,
	TokPercent:        ir.Mod,
	TokSlashSlash:     ir.FloorDiv,
	TokPercentPercent: ir.FloorMod,
}

func (p *Parser) parseMulDiv() (ir.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := mulDivOps[p.cur.Kind]
		if !ok {
			return left, nil
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = ir.NewBinary(op, left, right)
	}
}

func (p *Parser) parseUnary() (ir.Expr, error) {
	switch p.cur.Kind {
	case TokMinus:
		if err := p.next(); err != nil {
			return nil, err
		}

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ir.NewUnary(ir.Neg, operand), nil
	case TokBang:
		if err := p.next(); err != nil {
			return nil, err
		}

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ir.NewUnary(ir.Not, operand), nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ir.Expr, error) {
	switch p.cur.Kind {
	case TokInt:
		tok := p.cur

		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.Text)
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		return ir.NewIntImm(n), nil
	case TokFloat:
		tok := p.cur

		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", tok.Text)
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		return ir.NewFloatImm(f), nil
	case TokLParen:
		if err := p.next(); err != nil {
			return nil, err
		}

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}

		return inner, nil
	case TokIdent:
		return p.parseIdentExpr()
	default:
		return nil, p.errorf("expected an expression")
	}
}

func (p *Parser) parseIdentExpr() (ir.Expr, error) {
	nameTok, err := p.expect(TokIdent, "identifier")
	if err != nil {
		return nil, err
	}

	if p.cur.Kind != TokLBracket {
		if v, ok := p.vars[nameTok.Text]; ok {
			return nil, p.errorf("tensor %q used without an index list", v.Name)
		}

		return p.lookupIndex(nameTok.Text)
	}

	v, err := p.lookupVar(nameTok.Text)
	if err != nil {
		return nil, err
	}

	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}

	return ir.NewVar(v.Name, args, v.Shape, v.Ty)
}
