package tower

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupOrder(t *testing.T) {
	ordered := []Group{
		EmptyRoot,
		Start,
		ClassifierPrioritized,
		Qualifier,
		Classifier,
		EmptyRoot.TopPrioritized(0),
		EmptyRoot.TopPrioritized(0).Implicit(1),
		EmptyRoot.TopPrioritized(1),
		Member,
		EmptyRoot.Local(0),
		EmptyRoot.Local(0).Member(),
		EmptyRoot.Local(1),
		EmptyRoot.NonLocal(0),
		EmptyRoot.Implicit(0),
		EmptyRoot.Implicit(0).Member(),
		EmptyRoot.Implicit(0).Local(0),
		EmptyRoot.Implicit(0).NonLocal(1),
		EmptyRoot.Implicit(0).Implicit(1),
		EmptyRoot.NonLocal(1),
		EmptyRoot.Implicit(1),
		InvokeExtension,
		InvokeExtension.Join(EmptyRoot.Local(0)),
		QualifierValue,
		QualifierValue.Member(),
		Last,
	}
	for i := 0; i+1 < len(ordered); i++ {
		a, b := ordered[i], ordered[i+1]
		assert.Truef(t, a.Less(b), "%s < %s", a, b)
		assert.Falsef(t, b.Less(a), "%s < %s", b, a)
		assert.Equal(t, -1, a.Compare(b))
	}
}

func TestGroupInvokePriority(t *testing.T) {
	local := EmptyRoot.Local(0)
	receiver := local.WithInvokePriority(InvokeReceiverPriority)
	common := local.WithInvokePriority(CommonInvoke)
	extension := local.WithInvokePriority(InvokeExtensionPriority)

	assert.True(t, local.Less(receiver))
	assert.True(t, receiver.Less(common))
	assert.True(t, common.Less(extension))
	assert.True(t, extension.Less(EmptyRoot.Local(0).Member()), "kinds decide before invoke priority")

	atMember := common.InvokeOn(Member)
	atLocal := common.InvokeOn(EmptyRoot.Local(0))
	assert.True(t, common.Less(atMember))
	assert.True(t, atMember.Less(atLocal))
	assert.Equal(t, CommonInvoke, atLocal.InvokePriority())
	assert.False(t, atMember.Equal(atLocal))
	assert.True(t, atMember.Equal(common.InvokeOn(Member)))
}

func TestGroupString(t *testing.T) {
	tests := []struct {
		group Group
		want  string
	}{
		{EmptyRoot, "EmptyRoot"},
		{Member, "Member"},
		{EmptyRoot.Local(0).Member(), "Local(0).Member"},
		{EmptyRoot.TopPrioritized(2).Implicit(1), "TopPrioritized(2).Implicit(1)"},
		{InvokeExtension.Join(EmptyRoot.NonLocal(3)), "InvokeExtension.NonLocal(3)"},
		{EmptyRoot.NonLocal(1).WithInvokePriority(InvokeReceiverPriority), "NonLocal(1)[receiver]"},
		{EmptyRoot.Local(0).WithInvokePriority(CommonInvoke).InvokeOn(Member), "Local(0)[invoke Member]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.group.String())
		})
	}
}

func TestGroupDerivationCopies(t *testing.T) {
	parent := EmptyRoot.Implicit(0)
	member := parent.Member()
	local := parent.Local(1)
	joined := parent.Join(EmptyRoot.NonLocal(2))

	assert.Equal(t, "Implicit(0)", parent.String())
	assert.Equal(t, "Implicit(0).Member", member.String())
	assert.Equal(t, "Implicit(0).Local(1)", local.String())
	assert.Equal(t, "Implicit(0).NonLocal(2)", joined.String())
}
