// Package mocks holds gomock doubles for the port interfaces.
package mocks

//go:generate mockgen -source=../port/pipeline/pipeline.go -destination=pipeline.go -package=mocks -mock_names=Repository=MockPipelineRepository,Bootstrapper=MockPipelineBootstrapper
//go:generate mockgen -source=../port/opportunity/opportunity.go -destination=opportunity.go -package=mocks -mock_names=Repository=MockOpportunityRepository,Reader=MockOpportunityReader,AccountAccess=MockAccountAccess
//go:generate mockgen -source=../port/crmtask/crmtask.go -destination=crmtask.go -package=mocks -mock_names=Repository=MockTaskRepository
//go:generate mockgen -source=../port/automation/automation.go -destination=automation.go -package=mocks -mock_names=RuleRepository=MockRuleRepository,Trigger=MockAutomationTrigger
//go:generate mockgen -source=../port/tx/tx.go -destination=tx.go -package=mocks -mock_names=Manager=MockTxManager
//go:generate mockgen -source=../port/locker/locker.go -destination=locker.go -package=mocks -mock_names=Locker=MockLocker
//go:generate mockgen -source=../port/eventbus/eventbus.go -destination=eventbus.go -package=mocks -mock_names=EventBus=MockEventBus,Subscription=MockSubscription
//go:generate mockgen -source=../port/tenant/tenant.go -destination=tenant.go -package=mocks -mock_names=Repository=MockTenantRepository
//go:generate mockgen -source=../port/activity/activity.go -destination=activity.go -package=mocks -mock_names=Repository=MockActivityRepository
//go:generate mockgen -source=../port/quote/quote.go -destination=quote.go -package=mocks -mock_names=Repository=MockQuoteRepository
//go:generate mockgen -source=../port/sale/sale.go -destination=sale.go -package=mocks -mock_names=Repository=MockSaleRepository
//go:generate mockgen -source=../port/idempotency/idempotency.go -destination=idempotency.go -package=mocks -mock_names=Store=MockIdempotencyStore
