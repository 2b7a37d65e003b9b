package services

import (
	"context"
	"errors"
	"sync"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrWorkerStopped the submission worker no longer accepts work
var ErrWorkerStopped = errors.New("submission worker stopped")

type submissionReply struct {
	result *SubmitResult
	err    error
}

type submissionTask struct {
	ctx      context.Context
	call     interfaces.MintCall
	progress SubmitProgress
	reply    chan submissionReply
}

// SubmissionWorker owns the signer: one goroutine, one in-flight transaction, paced.
// Every batch of the process submits through the same worker.
type SubmissionWorker struct {
	submitter *TransactionSubmitter
	pacer     PacingPolicy

	tasks    chan submissionTask
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSubmissionWorker(submitter *TransactionSubmitter, pacer PacingPolicy) *SubmissionWorker {
	if pacer == nil {
		pacer = NoPacing{}
	}
	w := &SubmissionWorker{
		submitter: submitter,
		pacer:     pacer,
		tasks:     make(chan submissionTask),
		stopChan:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *SubmissionWorker) run() {
	defer w.wg.Done()
	logrus.Info("🚀 [SubmissionWorker] Started")
	for {
		select {
		case <-w.stopChan:
			logrus.Info("🛑 [SubmissionWorker] Stopped")
			return
		case task := <-w.tasks:
			task.reply <- w.process(task)
		}
	}
}

func (w *SubmissionWorker) process(task submissionTask) submissionReply {
	if err := task.ctx.Err(); err != nil {
		return submissionReply{err: err}
	}
	if err := w.pacer.BeforeSubmit(task.ctx); err != nil {
		return submissionReply{err: err}
	}

	progress := func(state models.JobState, result SubmitResult) {
		if state == models.JobStateSubmitted {
			w.pacer.AfterSubmit()
		}
		if task.progress != nil {
			task.progress(state, result)
		}
	}
	result, err := w.submitter.Submit(task.ctx, task.call, progress)
	return submissionReply{result: result, err: err}
}

// Submit queues the call behind any in-flight submission and waits for its outcome
func (w *SubmissionWorker) Submit(ctx context.Context, call interfaces.MintCall, progress SubmitProgress) (*SubmitResult, error) {
	task := submissionTask{
		ctx:      ctx,
		call:     call,
		progress: progress,
		reply:    make(chan submissionReply, 1),
	}
	select {
	case w.tasks <- task:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	}
	reply := <-task.reply
	return reply.result, reply.err
}

// Stop waits for the in-flight submission to finish
func (w *SubmissionWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}
