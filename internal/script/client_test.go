package script

import "testing"

func TestValidationWithoutService(t *testing.T) {
	c := &Client{}

	if _, err := c.CreateProject("", ""); err == nil {
		t.Error("empty project title accepted")
	}
	if _, err := c.UpdateContent("s1", nil); err == nil {
		t.Error("empty file list accepted")
	}
	if _, err := c.RunFunction("s1", "", nil, false); err == nil {
		t.Error("empty function name accepted")
	}
	if _, err := c.UpdateDeployment("s1", "", 1, ""); err == nil {
		t.Error("empty deploymentID accepted on update")
	}
	if err := c.DeleteDeployment("s1", ""); err == nil {
		t.Error("empty deploymentID accepted on delete")
	}
}
