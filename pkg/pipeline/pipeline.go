package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"trustmark-hq/polaris/pkg/catalog"
	"trustmark-hq/polaris/pkg/evidence"
	"trustmark-hq/polaris/pkg/evidence/recorder"
	"trustmark-hq/polaris/pkg/lineage"
	"trustmark-hq/polaris/pkg/planner"
	"trustmark-hq/polaris/pkg/policy"
	"trustmark-hq/polaris/pkg/quality"
	"trustmark-hq/polaris/pkg/sqlcompile"
	"trustmark-hq/polaris/pkg/sqlsafe"
	"trustmark-hq/polaris/pkg/telemetry/logging"
	"trustmark-hq/polaris/pkg/telemetry/metrics"
	"trustmark-hq/polaris/pkg/telemetry/tracing"
	"trustmark-hq/polaris/pkg/warehouse"
)

// Options assembles the collaborators of a Pipeline. Catalog, Policy,
// Gate and Executor are required; the rest degrade gracefully when nil.
type Options struct {
	Catalog  *catalog.Catalog
	Policy   *policy.Client
	Gate     *quality.Gate
	Executor *warehouse.Executor

	Lineage  *lineage.Emitter
	Recorder *recorder.Recorder
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer

	// ExportDir is where CSV exports land. Empty disables export.
	ExportDir string

	// QueryTimeout bounds warehouse execution. Zero means no bound
	// beyond the caller's context.
	QueryTimeout time.Duration
}

// Pipeline is the state machine sequencing plan building, policy
// evaluation, constraint application, SQL compilation and validation,
// the quality gate, execution, lineage and evidence. Each request runs
// start-to-finish on one logical thread of control; a Pipeline is safe
// for concurrent use because all shared state (catalog, role profiles)
// is read-only.
type Pipeline struct {
	catalog  *catalog.Catalog
	builder  *planner.Builder
	policy   *policy.Client
	gate     *quality.Gate
	executor *warehouse.Executor

	lineage  *lineage.Emitter
	recorder *recorder.Recorder
	metrics  *metrics.Collector
	tracer   *tracing.Tracer

	exportDir    string
	queryTimeout time.Duration
	logger       *slog.Logger
}

// New creates a pipeline over the given collaborators.
func New(opts Options) *Pipeline {
	return &Pipeline{
		catalog:      opts.Catalog,
		builder:      planner.NewBuilder(opts.Catalog),
		policy:       opts.Policy,
		gate:         opts.Gate,
		executor:     opts.Executor,
		lineage:      opts.Lineage,
		recorder:     opts.Recorder,
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
		exportDir:    opts.ExportDir,
		queryTimeout: opts.QueryTimeout,
		logger:       slog.Default().With("component", "pipeline"),
	}
}

// Run processes one request through the full state machine. Terminal
// failures return the partial Outcome (with the policy decision when
// one was reached) alongside the taxonomy error; evidence is recorded
// only for requests that reach execution.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	requestID := uuid.NewString()
	start := time.Now()

	ctx = logging.WithRequestID(ctx, requestID)
	ctx = logging.WithUserRole(ctx, req.User.Role)
	if p.tracer != nil {
		runCtx, runSpan := p.tracer.StartRun(ctx, requestID, req.User.Role)
		ctx = runCtx
		defer runSpan.End()
	}

	outcome := &Outcome{RequestID: requestID, State: StatePlanBuilt}

	// PlanBuilt
	built, err := p.buildPlan(ctx, requestID, start, req)
	if err != nil {
		return p.fail(ctx, outcome, StateInvalidPlan, start, req, err)
	}
	outcome.Plan = built.plan
	ctx = logging.WithMetricID(ctx, built.plan.MetricID)
	ctx = logging.WithDataProduct(ctx, built.plan.DataProduct)

	// PolicyEvaluated
	evaluated, err := p.evaluatePolicy(ctx, built)
	outcome.Decision = &evaluated.decision
	if err != nil {
		return p.fail(ctx, outcome, StateDenied, start, req, err)
	}
	outcome.State = StatePolicyEvaluated

	// ConstraintsApplied
	constrained := p.applyConstraints(ctx, evaluated)
	outcome.State = StateConstraintsApplied

	// SQLCompiled (validator runs inside; never before a non-DENY decision)
	compiled, err := p.compileSQL(ctx, constrained)
	if err != nil {
		return p.fail(ctx, outcome, StateInvalidSQL, start, req, err)
	}
	outcome.SQL = compiled.sqlText
	outcome.SQLHash = compiled.sqlHash
	outcome.State = StateSQLCompiled

	// QualityChecked
	checked, err := p.checkQuality(ctx, compiled)
	outcome.Quality = checked.snapshot
	if err != nil {
		return p.fail(ctx, outcome, StateQualityBlocked, start, req, err)
	}
	outcome.State = StateQualityChecked

	// Executed
	executed, err := p.execute(ctx, checked)
	if err != nil {
		return p.fail(ctx, outcome, StateExecutionFailed, start, req, err)
	}
	outcome.Result = executed.result
	outcome.RowCount = executed.result.RowCount
	outcome.State = StateExecuted

	// From here on nothing fails the request; failures degrade to
	// sentinels or log lines.

	// LineageRecorded
	outcome.LineageEventID = p.recordLineage(ctx, executed)
	outcome.State = StateLineageRecorded

	// Export side effect
	outcome.ExportPath = p.export(ctx, executed)

	// EvidenceRecorded
	p.recordEvidence(ctx, executed, outcome.LineageEventID, outcome.ExportPath)
	outcome.State = StateEvidenceRecorded

	outcome.Explanation = buildExplanation(executed)
	outcome.Duration = time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordQuery(req.User.Role, executed.plan.MetricID, "executed", outcome.Duration, outcome.RowCount)
	}
	p.logger.InfoContext(ctx, "pipeline run completed",
		"state", outcome.State,
		"rows", outcome.RowCount,
		"sql_hash", outcome.SQLHash,
		"duration_ms", outcome.Duration.Milliseconds(),
	)
	return outcome, nil
}

// EvaluateOnly builds the plan and evaluates policy without compiling
// or executing anything. Used by the policy check surface.
func (p *Pipeline) EvaluateOnly(ctx context.Context, req Request) (*planner.QueryPlan, policy.Decision, error) {
	plan, err := p.builder.Build(req.Text)
	if err != nil {
		return nil, policy.Decision{}, NewInvalidPlanError(req.Text, err)
	}
	decision := p.policy.Evaluate(ctx, req.User, plan.DataProduct, plan.Columns, req.Overrides)
	return plan, decision, nil
}

func (p *Pipeline) fail(ctx context.Context, outcome *Outcome, state State, start time.Time, req Request, err error) (*Outcome, error) {
	outcome.State = state
	outcome.Duration = time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordQuery(req.User.Role, metricLabel(outcome.Plan), strings.ToLower(string(state)), outcome.Duration, 0)
	}
	p.logger.WarnContext(ctx, "pipeline run terminated",
		"state", state,
		"error", err.Error(),
	)
	return outcome, err
}

func metricLabel(plan *planner.QueryPlan) string {
	if plan == nil {
		return "unresolved"
	}
	return plan.MetricID
}

func (p *Pipeline) buildPlan(ctx context.Context, requestID string, start time.Time, req Request) (builtStage, error) {
	done := p.startStage(ctx, "plan_built")
	defer done()

	plan, err := p.builder.Build(req.Text)
	if err != nil {
		return builtStage{}, NewInvalidPlanError(req.Text, err)
	}
	return builtStage{
		requestID: requestID,
		startedAt: start,
		request:   req,
		plan:      plan,
	}, nil
}

func (p *Pipeline) evaluatePolicy(ctx context.Context, st builtStage) (evaluatedStage, error) {
	done := p.startStage(ctx, "policy_evaluated")
	defer done()

	evalStart := time.Now()
	decision := p.policy.Evaluate(ctx, st.request.User, st.plan.DataProduct, st.plan.Columns, st.request.Overrides)

	if p.metrics != nil {
		p.metrics.RecordPolicyDecision(st.request.User.Role, string(decision.Result), time.Since(evalStart))
	}

	out := evaluatedStage{builtStage: st, decision: decision}
	if decision.Denied() {
		if p.metrics != nil {
			p.metrics.RecordPolicyDenial(st.request.User.Role, denialCategory(decision.Reason))
		}
		return out, NewPolicyDeniedError(decision, st.plan.WantsNarrative)
	}
	return out, nil
}

// denialCategory folds free-text denial reasons into a bounded label set.
func denialCategory(reason string) string {
	switch {
	case strings.Contains(reason, "unknown role"):
		return "unknown_role"
	case strings.Contains(reason, "specific region"):
		return "region_scope"
	case strings.Contains(reason, "high sensitivity"):
		return "high_sensitivity"
	case strings.Contains(reason, "medium sensitivity"):
		return "sensitivity_ceiling"
	default:
		return "other"
	}
}

func (p *Pipeline) applyConstraints(ctx context.Context, st evaluatedStage) constrainedStage {
	done := p.startStage(ctx, "constraints_applied")
	defer done()

	constrained := st.plan.ApplyConstraints(st.decision.Constraints)

	if p.metrics != nil && st.decision.Constraints != nil {
		c := st.decision.Constraints
		if c.MinGroupSize > 0 {
			p.metrics.RecordConstraint("min_group_size")
		}
		if c.MustMask {
			p.metrics.RecordConstraint("must_mask")
		}
		if c.MustRedactNarratives {
			p.metrics.RecordConstraint("must_redact_narratives")
		}
		if c.MaxRows > 0 {
			p.metrics.RecordConstraint("max_rows")
		}
		if c.ForbidExport {
			p.metrics.RecordConstraint("forbid_export")
		}
		if c.RegionFilter != "" {
			p.metrics.RecordConstraint("region_filter")
		}
	}
	return constrainedStage{evaluatedStage: st, constrained: constrained}
}

func (p *Pipeline) compileSQL(ctx context.Context, st constrainedStage) (compiledStage, error) {
	done := p.startStage(ctx, "sql_compiled")
	defer done()

	metric := p.catalog.Metric(st.plan.MetricID)
	dp := p.catalog.DataProduct(st.plan.DataProduct)

	sqlText, err := sqlcompile.Compile(metric, dp, st.constrained, st.decision.Constraints)
	if err != nil {
		return compiledStage{}, NewSQLValidationError("", err)
	}
	if err := sqlsafe.Validate(sqlText); err != nil {
		return compiledStage{}, NewSQLValidationError(sqlText, err)
	}

	return compiledStage{
		constrainedStage: st,
		sqlText:          sqlText,
		canonicalSQL:     sqlsafe.Normalize(sqlText),
		sqlHash:          sqlsafe.Hash(sqlText),
	}, nil
}

func (p *Pipeline) checkQuality(ctx context.Context, st compiledStage) (checkedStage, error) {
	done := p.startStage(ctx, "quality_checked")
	defer done()

	products := []string{st.plan.DataProduct}
	ok, snapshot := p.gate.CheckQueryable(ctx, products)

	out := checkedStage{compiledStage: st, snapshot: snapshot}
	if p.metrics != nil {
		for id, status := range snapshot {
			p.metrics.RecordQualityCheck(id, status.Queryable)
		}
	}
	if !ok {
		var blocked []string
		for id, status := range snapshot {
			if !status.Queryable {
				blocked = append(blocked, id)
				if p.metrics != nil {
					p.metrics.RecordQualityBlock(id)
				}
			}
		}
		return out, NewQualityBlockedError(blocked)
	}
	return out, nil
}

func (p *Pipeline) execute(ctx context.Context, st checkedStage) (executedStage, error) {
	done := p.startStage(ctx, "executed")
	defer done()

	execCtx := ctx
	if p.queryTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, p.queryTimeout)
		defer cancel()
	}

	result, err := p.executor.Query(execCtx, st.sqlText)
	if err != nil {
		return executedStage{}, NewExecutionError(st.sqlHash, err)
	}

	out := executedStage{checkedStage: st, result: result}

	// Redaction runs strictly after execution.
	if c := st.decision.Constraints; c != nil && c.MustRedactNarratives {
		out.suppressedWords = redactResult(result)
	}
	return out, nil
}

func (p *Pipeline) recordLineage(ctx context.Context, st executedStage) string {
	done := p.startStage(ctx, "lineage_recorded")
	defer done()

	if p.lineage == nil {
		return lineage.Unavailable
	}
	jobName := "analytics_query_" + st.plan.MetricID
	return p.lineage.Record(ctx, jobName,
		[]string{st.plan.DataProduct}, nil,
		st.sqlText, st.request.User.Role, st.requestID)
}

func (p *Pipeline) export(ctx context.Context, st executedStage) string {
	if p.exportDir == "" || !st.constrained.WantsExport {
		return ""
	}
	// Constraint application already cleared WantsExport when a
	// constraint forbids export; the role check is the last gate.
	if !policy.CanExport(st.request.User.Role) {
		return ""
	}

	filename := fmt.Sprintf("export_%s_%s.csv", st.plan.MetricID, time.Now().UTC().Format("20060102_150405"))
	path, err := warehouse.ExportCSV(st.result, p.exportDir, filename)
	if err != nil {
		p.logger.WarnContext(ctx, "result export failed", "error", err.Error())
		return ""
	}
	p.logger.InfoContext(ctx, "result exported", "path", path)
	return path
}

func (p *Pipeline) recordEvidence(ctx context.Context, st executedStage, lineageEventID, exportPath string) {
	done := p.startStage(ctx, "evidence_recorded")
	defer done()

	if p.recorder == nil {
		return
	}

	record := p.assembleRecord(st, lineageEventID, exportPath)
	if err := p.recorder.Record(ctx, record); err != nil {
		// Evidence-store failure never fails an executed request.
		p.logger.ErrorContext(ctx, "evidence recording failed", "error", err.Error())
		if p.metrics != nil {
			p.metrics.RecordEvidenceWrite(false)
		}
		return
	}
	if p.metrics != nil {
		p.metrics.RecordEvidenceWrite(true)
	}
}

func (p *Pipeline) assembleRecord(st executedStage, lineageEventID, exportPath string) *evidence.EvidenceRecord {
	metricVersions := map[string]string{}
	if m := p.catalog.Metric(st.plan.MetricID); m != nil {
		metricVersions[st.plan.MetricID] = m.Version
	}
	productVersions := map[string]string{}
	if dp := p.catalog.DataProduct(st.plan.DataProduct); dp != nil {
		productVersions[st.plan.DataProduct] = dp.Version
	}

	return &evidence.EvidenceRecord{
		RequestID:   st.requestID,
		Timestamp:   st.startedAt.UTC(),
		RequestText: st.request.Text,
		User:        st.request.User,
		Decision: evidence.DecisionRecord{
			Result:             string(st.decision.Result),
			Reason:             st.decision.Reason,
			ConstraintsApplied: st.decision.Constraints,
		},
		Metrics: evidence.MetricsRecord{
			MetricIDs:      []string{st.plan.MetricID},
			MetricVersions: metricVersions,
		},
		DataProducts: evidence.ProductsRecord{
			ProductsUsed:    []string{st.plan.DataProduct},
			ProductVersions: productVersions,
		},
		Quality: st.snapshot,
		SQL: evidence.SQLRecord{
			FinalSQL:     st.sqlText,
			CanonicalSQL: st.canonicalSQL,
			SQLHash:      st.sqlHash,
		},
		Results: evidence.ResultsRecord{
			RowCount:         st.result.RowCount,
			SuppressionCount: st.suppressedWords,
		},
		LineageEventID: lineageEventID,
		ExportPath:     exportPath,
	}
}

// startStage opens a tracing span and a duration observation for one
// stage; the returned func closes both.
func (p *Pipeline) startStage(ctx context.Context, stage string) func() {
	start := time.Now()

	var end func()
	if p.tracer != nil {
		_, span := p.tracer.StartStage(ctx, stage)
		end = func() { span.End() }
	}

	return func() {
		if p.metrics != nil {
			p.metrics.RecordStage(stage, time.Since(start))
		}
		if end != nil {
			end()
		}
	}
}
